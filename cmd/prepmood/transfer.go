package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/prepmood/internal/util/atomicwrite"
)

// checkTransferable valida que el token esté en condiciones de moverse:
// dueño declarado coincide en warranties Y token_master (si difieren hay
// drift y nadie debería tocar nada hasta entenderlo), garantía viva y no
// revocada, token sin bloquear.
func checkTransferable(info *tokenInfo, fromID int64) error {
	if info.WarrantyID == 0 {
		return fmt.Errorf("token %s has no live warranty", info.Token)
	}
	if info.WarrantyStatus == "revoked" {
		return fmt.Errorf("warranty %s is revoked", info.WarrantyPublicID)
	}
	if info.IsBlocked {
		return fmt.Errorf("token %s is blocked", info.Token)
	}
	if info.WarrantyOwnerID == nil || *info.WarrantyOwnerID != fromID {
		return fmt.Errorf("%w: warranty owner does not match --from", errIntegrity)
	}
	if info.OwnerUserID == nil || *info.OwnerUserID != *info.WarrantyOwnerID {
		return fmt.Errorf("%w: token_master and warranties disagree on owner of %s", errIntegrity, info.Token)
	}
	return nil
}

func newTransferCmd(flags *rootFlags) *cobra.Command {
	var token, fromEmail, toEmail, reason string

	cmd := &cobra.Command{
		Use:   "warranty:transfer",
		Short: "Transfiere una garantía a otro usuario, salteando el flujo de códigos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conn, err := connect(ctx, flags)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			return runTransfer(ctx, conn, flags, token, fromEmail, toEmail, reason)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "warranty token")
	cmd.Flags().StringVar(&fromEmail, "from", "", "current owner email")
	cmd.Flags().StringVar(&toEmail, "to", "", "new owner email")
	cmd.Flags().StringVar(&reason, "reason", "", "why the transfer bypasses the code flow")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runTransfer(ctx context.Context, conn *pgx.Conn, flags *rootFlags, token, fromEmail, toEmail, reason string) error {
	fromID, err := resolveUser(ctx, conn, fromEmail)
	if err != nil {
		return err
	}
	toID, err := resolveUser(ctx, conn, toEmail)
	if err != nil {
		return err
	}
	if fromID == toID {
		return errors.New("--from and --to are the same user")
	}

	info, err := lookupToken(ctx, conn, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	if err := checkTransferable(info, fromID); err != nil {
		return err
	}

	fmt.Printf("transfer %s (%s, status %s): %s -> %s\n",
		info.Token, info.ProductName, info.WarrantyStatus, fromEmail, toEmail)
	if flags.dryRun {
		fmt.Println("dry-run: no changes written")
		return nil
	}
	if !confirm(flags, "proceed with transfer?") {
		return errors.New("aborted")
	}

	if err := transferOwnership(ctx, conn, info, fromID, toID, reason); err != nil {
		return err
	}
	fmt.Println("done")
	return nil
}

// batchRow es una fila ya parseada del CSV de transferencias.
type batchRow struct {
	line  int
	token string
	from  string
	to    string
}

// parseBatchCSV parsea el CSV de transferencias: header + filas
// token,from_email,to_email. Split ingenuo por coma, sin campos con
// comillas; las filas con otra cantidad de columnas se reportan y se
// saltean. Un archivo sin filas de datos es un error.
func parseBatchCSV(data string) ([]batchRow, []string, error) {
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) < 2 {
		return nil, nil, errors.New("batch file needs a header and at least one data row")
	}

	var (
		rows []batchRow
		bad  []string
	)
	for i, line := range nonEmpty[1:] {
		lineNo := i + 2
		cols := strings.Split(line, ",")
		if len(cols) != 3 {
			bad = append(bad, fmt.Sprintf("line %d: expected 3 columns, got %d", lineNo, len(cols)))
			continue
		}
		row := batchRow{
			line:  lineNo,
			token: strings.TrimSpace(cols[0]),
			from:  strings.TrimSpace(cols[1]),
			to:    strings.TrimSpace(cols[2]),
		}
		if row.token == "" || row.from == "" || row.to == "" {
			bad = append(bad, fmt.Sprintf("line %d: empty column", lineNo))
			continue
		}
		rows = append(rows, row)
	}
	return rows, bad, nil
}

func newTransferBatchCmd(flags *rootFlags) *cobra.Command {
	var file, report string

	cmd := &cobra.Command{
		Use:   "warranty:transfer-batch",
		Short: "Transfiere garantías en lote desde un CSV token,from_email,to_email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			rows, bad, err := parseBatchCSV(string(data))
			if err != nil {
				return err
			}

			fmt.Printf("batch: %d transfers, %d rejected rows\n", len(rows), len(bad))
			for _, b := range bad {
				fmt.Println(b)
			}
			if flags.dryRun {
				for _, row := range rows {
					fmt.Printf("line %d: would transfer %s from %s to %s\n", row.line, row.token, row.from, row.to)
				}
				fmt.Println("dry-run: no changes written")
				return nil
			}
			// Una sola confirmación por el lote; las filas no vuelven a
			// preguntar.
			if !confirm(flags, fmt.Sprintf("apply %d transfers?", len(rows))) {
				return errors.New("aborted")
			}

			ctx := cmd.Context()
			conn, err := connect(ctx, flags)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			var lines []string
			lines = append(lines, bad...)
			ok, failed := 0, len(bad)
			for _, row := range rows {
				err := runBatchRow(ctx, conn, row)
				if err != nil {
					failed++
					lines = append(lines, fmt.Sprintf("line %d: %s: FAILED: %v", row.line, row.token, err))
					fmt.Printf("line %d: %s: FAILED: %v\n", row.line, row.token, err)
					continue
				}
				ok++
				lines = append(lines, fmt.Sprintf("line %d: %s: ok", row.line, row.token))
			}

			fmt.Printf("batch done: %d ok, %d failed\n", ok, failed)
			if report != "" {
				body := strings.Join(lines, "\n") + "\n"
				if err := atomicwrite.AtomicWriteFile(report, []byte(body), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Printf("report written to %s\n", report)
			}
			if failed > 0 {
				return fmt.Errorf("%d rows failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file with transfers")
	cmd.Flags().StringVar(&report, "report", "", "write a per-row report to this path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// runBatchRow aplica una fila del lote. Cada fila es su propia
// transacción: una fila mala no frena a las demás.
func runBatchRow(ctx context.Context, conn *pgx.Conn, row batchRow) error {
	fromID, err := resolveUser(ctx, conn, row.from)
	if err != nil {
		return err
	}
	toID, err := resolveUser(ctx, conn, row.to)
	if err != nil {
		return err
	}
	if fromID == toID {
		return errors.New("from and to are the same user")
	}
	info, err := lookupToken(ctx, conn, row.token)
	if err != nil {
		return err
	}
	if err := checkTransferable(info, fromID); err != nil {
		return err
	}
	return transferOwnership(ctx, conn, info, fromID, toID, "")
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	var token, reason string

	cmd := &cobra.Command{
		Use:   "warranty:delete",
		Short: "Baja lógica de una garantía y bloqueo de su token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if len(strings.TrimSpace(reason)) < 5 {
				return errors.New("--reason must be at least 5 characters")
			}

			conn, err := connect(ctx, flags)
			if err != nil {
				return err
			}
			defer conn.Close(ctx)

			info, err := lookupToken(ctx, conn, strings.TrimSpace(token))
			if err != nil {
				return err
			}
			if info.WarrantyID == 0 {
				return fmt.Errorf("token %s has no live warranty", info.Token)
			}

			fmt.Printf("delete warranty %s (token %s, status %s) and block its token\n",
				info.WarrantyPublicID, info.Token, info.WarrantyStatus)
			if flags.dryRun {
				fmt.Println("dry-run: no changes written")
				return nil
			}
			if !confirm(flags, "proceed with delete?") {
				return errors.New("aborted")
			}

			if err := softDeleteWarranty(ctx, conn, info, strings.TrimSpace(reason)); err != nil {
				return err
			}
			fmt.Println("done")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "warranty token")
	cmd.Flags().StringVar(&reason, "reason", "", "why the warranty is being removed")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}
