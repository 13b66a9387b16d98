package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
	"github.com/dropDatabas3/fastpass/internal/observability/logger"
	"github.com/dropDatabas3/fastpass/internal/security/secretbox"
)

type identityFlags struct {
	email  string
	name   string
	uid    string
	fields []string
}

func (f *identityFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Email del usuario")
	cmd.Flags().StringVar(&f.name, "name", "", "Nombre visible del usuario")
	cmd.Flags().StringVar(&f.uid, "uid", "", "ID estable del usuario en la app host")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "Campo extra k=v (repetible)")
}

// parseFields convierte k=v en un mapa. El valor puede contener "=".
func parseFields(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--field %q: se espera k=v", kv)
		}
		out[k] = v
	}
	return out, nil
}

func (o *rootOpts) newFastpass(f *identityFlags) (*fastpass.Fastpass, error) {
	fields, err := parseFields(f.fields)
	if err != nil {
		return nil, err
	}
	secret, err := secretbox.Reveal(o.cfg.Security.SecretBoxMasterKey, o.cfg.Fastpass.ConsumerSecret)
	if err != nil {
		return nil, fmt.Errorf("fastpass.consumer_secret: %w", err)
	}
	// fastpass.New junta credenciales y claims faltantes en un solo error
	return fastpass.New(fastpass.Config{
		Host:   o.cfg.Fastpass.Host,
		Secure: o.cfg.Fastpass.Secure,
		Key:    o.cfg.Fastpass.ConsumerKey,
		Secret: secret,
		Email:  f.email,
		Name:   f.name,
		UID:    f.uid,
		Fields: fields,
	})
}

func newURLCmd(o *rootOpts) *cobra.Command {
	f := &identityFlags{}
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Imprime una URL Fastpass firmada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fp, err := o.newFastpass(f)
			if err != nil {
				return err
			}
			u, err := fp.URL()
			if err != nil {
				return err
			}
			logger.L().Debug("fastpass url issued", logger.UID(f.uid), logger.Source("cli"))
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newScriptCmd(o *rootOpts) *cobra.Command {
	f := &identityFlags{}
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Imprime el snippet <script> de Fastpass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fp, err := o.newFastpass(f)
			if err != nil {
				return err
			}
			s, err := fp.Script()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}
