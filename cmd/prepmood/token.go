package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTokenBlockCmd(flags *rootFlags, block bool) *cobra.Command {
	use, short := "token:block", "Bloquea un token: deja de verificar como genuino"
	if !block {
		use, short = "token:unblock", "Desbloquea un token"
	}

	var token, reason string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conn, err := connect(ctx, flags)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			token = strings.TrimSpace(token)
			info, err := lookupToken(ctx, conn, token)
			if err != nil {
				return err
			}
			if info.IsBlocked == block {
				fmt.Printf("token %s already in the requested state\n", token)
				return nil
			}
			fmt.Printf("set is_blocked=%v on %s (%s)\n", block, token, info.ProductName)
			if flags.dryRun {
				fmt.Println("dry-run: no changes written")
				return nil
			}
			if !confirm(flags, "proceed?") {
				return errors.New("aborted")
			}
			if err := setTokenBlocked(ctx, conn, token, block, reason); err != nil {
				return err
			}
			fmt.Println("done")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "warranty token")
	cmd.Flags().StringVar(&reason, "reason", "", "why the token changes state")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newTokenLookupCmd(flags *rootFlags) *cobra.Command {
	var token, search string

	cmd := &cobra.Command{
		Use:   "token:lookup",
		Short: "Muestra el estado de un token o busca por término",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if (token == "") == (search == "") {
				return errors.New("exactly one of --token or --search is required")
			}

			conn, err := connect(ctx, flags)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			if search != "" {
				results, err := searchTokens(ctx, conn, strings.TrimSpace(search), 50)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Println("no matches")
					return nil
				}
				for _, info := range results {
					fmt.Println(formatTokenLine(&info))
				}
				return nil
			}

			info, err := lookupToken(ctx, conn, strings.TrimSpace(token))
			if err != nil {
				return err
			}
			fmt.Println(formatTokenLine(info))
			if info.WarrantyID != 0 {
				fmt.Printf("  warranty %s  status=%s\n", info.WarrantyPublicID, info.WarrantyStatus)
			} else {
				fmt.Println("  no live warranty")
			}

			scans, err := recentScans(ctx, conn, info.Token, 5)
			if err != nil {
				return err
			}
			for _, s := range scans {
				fmt.Printf("  scan %s  ip=%s  ua=%q\n", s.ScannedAt.Format("2006-01-02 15:04:05"), s.IP, s.UserAgent)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "exact token")
	cmd.Flags().StringVar(&search, "search", "", "match against token, internal code or product name")
	return cmd
}

func formatTokenLine(info *tokenInfo) string {
	owner := "-"
	if info.OwnerUserID != nil {
		owner = fmt.Sprintf("%d", *info.OwnerUserID)
	}
	state := "ok"
	if info.IsBlocked {
		state = "BLOCKED"
	}
	return fmt.Sprintf("%s  pk=%d  product=%q  code=%s  owner=%s  scans=%d  %s",
		info.Token, info.TokenPK, info.ProductName, info.InternalCode, owner, info.ScanCount, state)
}
