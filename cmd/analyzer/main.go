package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cleberrangel/clickup-task-analyzer/internal/client"
	"github.com/cleberrangel/clickup-task-analyzer/internal/config"
	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/cleberrangel/clickup-task-analyzer/internal/service"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "analyzer",
		Short:         "Analisa estimativas de tempo das tarefas de um usuário do ClickUp",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitWithWriter(logLevel, false, os.Stderr)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "nível de log (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(historyCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		stop()
		os.Exit(1)
	}
}

// app agrupa as dependências montadas a partir da configuração
type app struct {
	cfg      *config.Config
	resolver *service.UserResolver
	fetcher  *service.TaskFetcher
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	api, err := client.NewClient(client.Options{
		APIKey:  cfg.ClickUpAPIKey,
		BaseURL: cfg.ClickUpBaseURL,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		resolver: service.NewUserResolver(api),
		fetcher:  service.NewTaskFetcher(api, service.NewRequestLimiter(cfg.RequestInterval), logProgress{}),
	}, nil
}

// logProgress escreve o andamento no log (stderr)
type logProgress struct{}

func (logProgress) Report(ctx context.Context, p model.Progress) {
	logger.Get(ctx).Info().
		Str("stage", p.Stage).
		Int("current", p.Current).
		Int("total", p.Total).
		Msg(p.Message)
}
