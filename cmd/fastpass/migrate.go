package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/fastpass/internal/audit"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
	migrations "github.com/dropDatabas3/fastpass/migrations/postgres"
)

func newMigrateCmd(o *rootOpts) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de la tabla de auditoría",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = o.cfg.Audit.DSN
			}
			if dsn == "" {
				return errors.New("migrate: audit.dsn (o --dsn) es requerido")
			}

			_, pool, err := audit.NewPGSink(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := audit.Migrate(cmd.Context(), pool, migrations.FS)
			if err != nil {
				return err
			}
			logger.L().Info("migrations applied", logger.Any("files", n))
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "DSN de Postgres (pisa audit.dsn)")
	return cmd
}
