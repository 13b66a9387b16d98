package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/fastpass/internal/config"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
)

var version = "dev"

type rootOpts struct {
	configPath string
	envFile    string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOpts{}

	root := &cobra.Command{
		Use:           "fastpass",
		Short:         "Genera y verifica URLs Fastpass (SSO de Get Satisfaction)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", os.Getenv("FASTPASS_CONFIG"), "Archivo YAML de configuración (env FASTPASS_CONFIG)")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", ".env", "Archivo .env a cargar si existe")

	root.AddCommand(
		newURLCmd(o),
		newScriptCmd(o),
		newVerifyCmd(o),
		newServeCmd(o),
		newSealCmd(o),
		newMigrateCmd(o),
	)
	return root
}

// load: .env (si existe) -> YAML -> env -> defaults -> logger.
func (o *rootOpts) load() error {
	if o.envFile != "" {
		if _, err := os.Stat(o.envFile); err == nil {
			if err := godotenv.Load(o.envFile); err != nil {
				return fmt.Errorf("env-file %s: %w", o.envFile, err)
			}
		}
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.Log.ServiceName,
		Version:     version,
	})
	return nil
}
