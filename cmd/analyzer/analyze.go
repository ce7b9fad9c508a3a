package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/cleberrangel/clickup-task-analyzer/internal/service"
	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	from, to    string
	statuses    []string
	teamID      string
	export      string
	xlsx        string
	webhook     string
	enrich      bool
	month       bool
	showSummary bool
}

func analyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <username>",
		Short: "Soma as estimativas de tempo de um usuário numa janela de datas",
		Long: `Busca as tarefas atribuídas ao usuário (busca parcial por nome ou email),
filtra por status e soma as estimativas por dia.

Datas aceitam YYYY-MM-DD, YYYY/MM/DD, MM-DD-YYYY, MM/DD/YYYY ou "Nd" (N dias atrás).

Exemplos:
  analyzer analyze alice --from 2024-03-01 --to 2024-03-31
  analyzer analyze alice --from 30d --to 0d --status all --month
  analyzer analyze alice --from 7d --to 0d --export out/ --xlsx out/alice.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.from, "from", "", "data inicial (YYYY-MM-DD ou Nd)")
	cmd.Flags().StringVar(&f.to, "to", "", "data final (YYYY-MM-DD ou Nd)")
	cmd.Flags().StringSliceVarP(&f.statuses, "status", "s", []string{"completed"}, "status aceitos (all para todos)")
	cmd.Flags().StringVar(&f.teamID, "team-id", "", "time do ClickUp (padrão: primeiro disponível)")
	cmd.Flags().StringVar(&f.export, "export", "", "diretório ou arquivo .json para o export")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "arquivo .xlsx de saída")
	cmd.Flags().StringVar(&f.webhook, "webhook", "", "URL que recebe o export (padrão: WEBHOOK_URL)")
	cmd.Flags().BoolVar(&f.enrich, "enrich", false, "busca comentários e time tracking de cada tarefa")
	cmd.Flags().BoolVar(&f.month, "month", false, "inclui a análise do mês corrente")
	cmd.Flags().BoolVar(&f.showSummary, "summary", true, "imprime o resumo por dia")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runAnalyze(cmd *cobra.Command, username string, f analyzeFlags) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}

	analysis := service.NewAnalysisService(a.resolver, a.fetcher, nil, nil, logProgress{})
	opts, err := service.ParseRequest(model.AnalysisRequest{
		Username:     username,
		TeamID:       f.teamID,
		From:         f.from,
		To:           f.to,
		StatusFilter: f.statuses,
		Enrich:       f.enrich,
		CurrentMonth: f.month,
	}, analysis.Now())
	if err != nil {
		return err
	}

	result, err := analysis.Analyze(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usuário: %s (%s)\n", result.User.Username, result.User.Email)
	for _, c := range result.Candidates {
		fmt.Fprintf(out, "  também corresponde: %s (%s)\n", c.Username, c.Email)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Range.StructuredText)
	if f.showSummary {
		printStats(cmd, "Janela", result.Range)
	}
	if result.CurrentMonth != nil {
		fmt.Fprintln(out, "\nMês corrente")
		fmt.Fprintln(out, result.CurrentMonth.StructuredText)
		if f.showSummary {
			printStats(cmd, "Mês corrente", *result.CurrentMonth)
		}
	}

	data := service.BuildExport(result)

	if f.export != "" {
		path := f.export
		if filepath.Ext(path) != ".json" {
			path = filepath.Join(path, service.ExportFileName(result.User.Username, "data.json"))
		}
		if err := service.WriteJSON(path, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nExport JSON: %s\n", path)
	}

	if f.xlsx != "" {
		buf, err := service.NewExcelGenerator().Generate(result)
		if err != nil {
			return fmt.Errorf("gerar excel: %w", err)
		}
		if dir := filepath.Dir(f.xlsx); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("criar diretório: %w", err)
			}
		}
		if err := os.WriteFile(f.xlsx, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("gravar xlsx: %w", err)
		}
		fmt.Fprintf(out, "Planilha: %s\n", f.xlsx)
	}

	webhook := f.webhook
	if webhook == "" {
		webhook = a.cfg.WebhookURL
	}
	if webhook != "" {
		if err := service.NewWebhookService(0).SendAnalysis(ctx, webhook, data); err != nil {
			return err
		}
		fmt.Fprintf(out, "Webhook: enviado para %s\n", webhook)
	}

	return nil
}

func printStats(cmd *cobra.Command, title string, p model.PeriodAnalysis) {
	days := service.BuildDays(p.Tasks, p.Aggregate, p.Window)
	stats := service.DaySummaryStats(days)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s: %d dias no intervalo, %d com atividade (%d úteis, %d fim de semana)\n",
		title, stats.TotalCalendarDays, stats.ActiveDays, stats.ActiveWorkingDays, stats.ActiveWeekendDays)
	fmt.Fprintf(out, "  Média por dia ativo: %.2f h\n", stats.AvgActiveDayHours)
	if stats.MaxDay != "" {
		fmt.Fprintf(out, "  Dia mais carregado: %s (%.2f h)\n", stats.MaxDay, stats.MaxDayHours)
	}
	dist := service.StatusDistribution(p.Tasks)
	statuses := make([]string, 0, len(dist))
	for status := range dist {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(out, "  %s: %d\n", status, dist[status])
	}
}
