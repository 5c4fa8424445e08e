// Command prepmood es el CLI de operaciones: transferencias manuales,
// bloqueo de tokens, bajas y monitoreo de consultas.
//
// Los comandos de escritura van por SQL directo contra la misma base del
// servicio; inquiry:watch usa el Admin API por HTTP.
//
// Códigos de salida: 0 ok, 1 error, 2 violación de integridad (estado
// inconsistente detectado antes o durante la escritura).
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errIntegrity marca inconsistencias de datos (drift de dueños, filas
// afectadas inesperadas). El proceso sale con código 2.
var errIntegrity = errors.New("integrity violation")

type rootFlags struct {
	dsn    string
	dryRun bool
	yes    bool
}

func main() {
	_ = godotenv.Load()

	flags := &rootFlags{dsn: os.Getenv("DATABASE_URL")}

	root := &cobra.Command{
		Use:           "prepmood",
		Short:         "CLI de operaciones del backend prepmood",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dsn, "dsn", flags.dsn, "PostgreSQL DSN (env DATABASE_URL)")
	root.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "print the plan without writing")
	root.PersistentFlags().BoolVar(&flags.yes, "yes", false, "skip the interactive confirmation")

	root.AddCommand(
		newTransferCmd(flags),
		newTransferBatchCmd(flags),
		newDeleteCmd(flags),
		newTokenBlockCmd(flags, true),
		newTokenBlockCmd(flags, false),
		newTokenLookupCmd(flags),
		newInquiryWatchCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		if errors.Is(err, errIntegrity) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// confirmInput es stdin salvo en tests.
var confirmInput io.Reader = os.Stdin

// confirm pregunta yes/no. --yes lo saltea. Todo comando que escribe
// pasa por acá antes de tocar la base.
func confirm(flags *rootFlags, prompt string) bool {
	if flags.yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	sc := bufio.NewScanner(confirmInput)
	if !sc.Scan() {
		return false
	}
	answer := strings.TrimSpace(sc.Text())
	return answer == "y" || answer == "Y" || answer == "yes"
}
