package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/fastpass/internal/config"
	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

func newVerifyCmd(o *rootOpts) *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "verify <url>",
		Short: "Verifica la firma de una URL Fastpass con las credenciales configuradas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := o.cfg.Credentials()
			if err != nil {
				return err
			}
			var opts []fastpass.VerifyOption
			if maxAge > 0 {
				opts = append(opts, fastpass.WithMaxAge(maxAge, fastpass.SystemClock))
			}
			v, err := fastpass.Verify(args[0], creds, opts...)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"valid":     true,
				"base_url":  v.BaseURL,
				"claims":    v.Claims,
				"nonce":     v.Nonce,
				"timestamp": v.Timestamp.UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Rechaza timestamps fuera de esta ventana (0 = sin chequeo)")
	return cmd
}

// durOr devuelve la duración de config o def si vacía.
func durOr(s string, def time.Duration) time.Duration {
	if d := config.Dur(s); d > 0 {
		return d
	}
	return def
}
