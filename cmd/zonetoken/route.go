package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	jwtx "github.com/dropDatabas3/zonetoken/internal/jwt"
)

// route no verifica nada: muestra a qué tenant se rutearía el token.
func newRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <token|->",
		Short: "Muestra zid y subdomain (ext_attr.zdn) de un token, SIN verificar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readToken(cmd, args[0])
			if err != nil {
				return err
			}
			r, err := jwtx.RouteToken(raw)
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(map[string]string{
				"zid":       r.ZoneID,
				"subdomain": r.Subdomain,
			}, "", "  ")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
