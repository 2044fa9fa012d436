package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/zonetoken/internal/app"
	"github.com/dropDatabas3/zonetoken/internal/validation"
)

func newDecodeCmd(opts *rootOpts) *cobra.Command {
	var required, scopes []string

	cmd := &cobra.Command{
		Use:   "decode <token|->",
		Short: "Verifica firma y claims de un token e imprime las claims",
		Long: `Verifica la firma con el key set del tenant del token y corre la cadena
de validadores (timestamp + audiencia). Con --require o --scope la audiencia se
reemplaza por esos chequeos (el de timestamp corre siempre).

Exit codes: 0 ok, 1 token inválido, 2 falla transitoria (reintentar).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readToken(cmd, args[0])
			if err != nil {
				return err
			}

			var validators []validation.Validator
			if len(required) > 0 {
				validators = append(validators, validation.RequireClaims(required...))
			}
			if len(scopes) > 0 {
				for i, s := range scopes {
					scopes[i] = validation.LocalScope(opts.cfg.Binding.AppID(), s)
				}
				v, err := validation.RequireScopes(scopes...)
				if err != nil {
					return err
				}
				validators = append(validators, v)
			}
			c, err := app.New(opts.cfg, app.Options{Validators: validators})
			if err != nil {
				return err
			}
			defer c.Close()

			cs, err := c.Decoder.Decode(cmd.Context(), raw)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(cs, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().StringSliceVar(&required, "require", nil, "Claims obligatorios (reemplaza el validador de audiencia)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Scopes obligatorios; sin '.' se califican con el xsappname")
	return cmd
}

// readToken: "-" lee la primera línea no vacía de stdin.
func readToken(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}
