package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resolveCmd() *cobra.Command {
	var teamID string

	cmd := &cobra.Command{
		Use:   "resolve <username>",
		Short: "Mostra qual membro do time corresponde à busca",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			res, err := a.resolver.ResolveUser(cmd.Context(), args[0], teamID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Time: %s\n", res.TeamID)
			fmt.Fprintf(out, "Usuário: %s <%s> (id %d)\n", res.User.Username, res.User.Email, res.User.ID)
			for _, c := range res.Candidates {
				fmt.Fprintf(out, "  também corresponde: %s <%s> (id %d)\n", c.Username, c.Email, c.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&teamID, "team-id", "", "time do ClickUp (padrão: primeiro disponível)")
	return cmd
}
