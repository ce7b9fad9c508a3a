package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/config"
	"github.com/cleberrangel/clickup-task-analyzer/internal/database"
	"github.com/cleberrangel/clickup-task-analyzer/internal/migration"
	"github.com/cleberrangel/clickup-task-analyzer/internal/repository"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Consulta e mantém o histórico de análises (requer DATABASE_URL)",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyPruneCmd())
	cmd.AddCommand(historyMigrateCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	var f repository.HistoryFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista as últimas análises gravadas",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHistoryDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			runs, err := repository.NewHistoryRepository(db).List(cmd.Context(), f)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSUÁRIO\tJANELA\tTAREFAS\tHORAS\tCRIADO EM")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s a %s\t%d\t%s\t%s\n",
					r.ID, r.Username,
					r.DateFrom.UTC().Format("2006-01-02"), r.DateTo.UTC().Format("2006-01-02"),
					r.TotalTasks, strconv.FormatFloat(r.TotalEstimateHours, 'f', -1, 64),
					r.CreatedAt.Local().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&f.Limit, "limit", "n", repository.DefaultHistoryLimit, "máximo de registros")
	cmd.Flags().Int64Var(&f.UserID, "user-id", 0, "filtra por usuário do ClickUp")
	return cmd
}

func historyPruneCmd() *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove análises mais antigas que --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := parseAge(olderThan)
			if err != nil {
				return err
			}

			db, err := openHistoryDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			n, err := repository.NewHistoryRepository(db).DeleteOlderThan(cmd.Context(), time.Now().Add(-age))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d análises removidas\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "90d", "idade mínima (ex: 90d, 720h)")
	return cmd
}

func historyMigrateCmd() *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica (ou desfaz a última) migration do histórico",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openHistoryDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close(db)

			m := migration.NewMigrator(db)
			if rollback {
				err = m.Rollback(cmd.Context())
			} else {
				err = m.Run(cmd.Context())
			}
			if err != nil {
				return err
			}

			version, err := m.CurrentVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Versão do schema: %d\n", version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "desfaz a última migration")
	return cmd
}

func openHistoryDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL não configurada")
	}
	return database.Connect(ctx, database.Config{DSN: cfg.DatabaseURL})
}

// parseAge aceita "Nd" além do formato de time.ParseDuration
func parseAge(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("idade inválida: %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("idade inválida: %q", s)
	}
	return d, nil
}
