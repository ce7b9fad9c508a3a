package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/cache"
	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// AnalysisOptions é a requisição já validada
type AnalysisOptions struct {
	Username     string
	TeamID       string
	Window       model.DateWindow
	Filter       StatusFilter
	Enrich       bool
	CurrentMonth bool

	// RunID opcional; vazio gera um novo. Não entra na chave de cache.
	RunID string

	// datas relativas ("30d") entram na chave como texto + dia, não como instante
	fromKey, toKey string
}

// ParseRequest valida a requisição e interpreta as datas relativas a now
func ParseRequest(req model.AnalysisRequest, now time.Time) (AnalysisOptions, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return AnalysisOptions{}, fmt.Errorf("%w: username obrigatório", model.ErrInvalidRequest)
	}

	window, err := ParseWindow(req.From, req.To, now)
	if err != nil {
		return AnalysisOptions{}, err
	}

	return AnalysisOptions{
		Username:     username,
		TeamID:       strings.TrimSpace(req.TeamID),
		Window:       window,
		Filter:       ParseStatusFilter(req.StatusFilter),
		Enrich:       req.Enrich,
		CurrentMonth: req.CurrentMonth,
		fromKey:      relativeKey(req.From, now),
		toKey:        relativeKey(req.To, now),
	}, nil
}

// relativeKey normaliza "30d"/"30 days" para "30d@AAAA-MM-DD"; vazio para datas absolutas
func relativeKey(raw string, now time.Time) string {
	m := daysAgoPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return ""
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	return strconv.Itoa(days) + "d@" + DateKey(now)
}

// CacheKey identifica a análise no cache. Opções equivalentes geram a mesma chave.
func (o AnalysisOptions) CacheKey() string {
	payload, _ := json.Marshal(struct {
		Username     string   `json:"u"`
		TeamID       string   `json:"t"`
		From         string   `json:"f"`
		To           string   `json:"to"`
		Filter       []string `json:"s"`
		Enrich       bool     `json:"e"`
		CurrentMonth bool     `json:"m"`
	}{
		Username:     strings.ToLower(o.Username),
		TeamID:       o.TeamID,
		From:         windowKey(o.fromKey, o.Window.From),
		To:           windowKey(o.toKey, o.Window.To),
		Filter:       o.Filter.Labels(),
		Enrich:       o.Enrich,
		CurrentMonth: o.CurrentMonth,
	})
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func windowKey(relative string, t time.Time) string {
	if relative != "" {
		return relative
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// AnalysisService executa resolução de usuário, coleta, agregação e relatório
type AnalysisService struct {
	resolver *UserResolver
	fetcher  *TaskFetcher
	history  HistoryStore
	cache    *cache.Cache[*model.Analysis]
	progress ProgressReporter
	now      func() time.Time
}

// NewAnalysisService cria o serviço. history, results e progress podem ser nil.
func NewAnalysisService(resolver *UserResolver, fetcher *TaskFetcher, history HistoryStore, results *cache.Cache[*model.Analysis], progress ProgressReporter) *AnalysisService {
	return &AnalysisService{
		resolver: resolver,
		fetcher:  fetcher,
		history:  history,
		cache:    results,
		progress: progress,
		now:      time.Now,
	}
}

// WithClock troca o relógio usado em datas relativas, GeneratedAt e nomes de arquivo
func (s *AnalysisService) WithClock(now func() time.Time) *AnalysisService {
	s.now = now
	return s
}

// Now retorna o relógio do serviço
func (s *AnalysisService) Now() time.Time {
	return s.now()
}

// ResolveUser expõe a resolução de usuário (endpoint /users/resolve e CLI)
func (s *AnalysisService) ResolveUser(ctx context.Context, query, teamID string) (*model.UserResolution, error) {
	return s.resolver.ResolveUser(ctx, query, teamID)
}

// Analyze executa a análise. O resultado fica em cache pelo TTL configurado, e o
// histórico é gravado só quando a análise roda de fato.
func (s *AnalysisService) Analyze(ctx context.Context, opts AnalysisOptions) (*model.Analysis, error) {
	key := opts.CacheKey()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.Get().IncrementCacheHit()
			logger.Get(ctx).Info().Str("run_id", cached.RunID).Msg("Análise servida do cache")
			if opts.RunID == "" {
				return cached, nil
			}
			s.report(ctx, model.Progress{OperationID: opts.RunID, Stage: "done", Current: 1, Total: 1, Message: "cache"})
			if opts.RunID == cached.RunID {
				return cached, nil
			}
			// quem pediu um RunID (fila) recebe o resultado com o próprio ID
			hit := *cached
			hit.RunID = opts.RunID
			return &hit, nil
		}
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	ctx = logger.WithOperationID(ctx, runID)
	log := logger.Get(ctx)
	start := time.Now()

	log.Info().
		Str("username", opts.Username).
		Str("team_id", opts.TeamID).
		Time("from", opts.Window.From).
		Time("to", opts.Window.To).
		Strs("status_filter", opts.Filter.Labels()).
		Bool("enrich", opts.Enrich).
		Msg("Iniciando análise")

	analysis, err := s.run(ctx, runID, opts)
	metrics.Get().IncrementAnalysis(err == nil)
	if err != nil {
		log.Error().Err(err).Msg("Análise falhou")
		s.report(ctx, model.Progress{OperationID: runID, Stage: "failed", Message: err.Error()})
		return nil, err
	}

	if s.history != nil {
		if err := s.history.Save(ctx, RunFromAnalysis(analysis)); err != nil {
			// histórico não invalida a análise
			log.Warn().Err(err).Msg("Falha ao gravar histórico")
		}
	}
	if s.cache != nil {
		s.cache.Set(key, analysis)
	}

	log.Info().
		Int("total_tasks", analysis.Range.Aggregate.TotalTasks).
		Float64("total_hours", analysis.Range.Aggregate.TotalEstimateHours).
		Dur("duration", time.Since(start)).
		Msg("Análise concluída")
	s.report(ctx, model.Progress{OperationID: runID, Stage: "done", Current: 1, Total: 1})

	return analysis, nil
}

func (s *AnalysisService) run(ctx context.Context, runID string, opts AnalysisOptions) (*model.Analysis, error) {
	s.report(ctx, model.Progress{OperationID: runID, Stage: "resolve", Message: opts.Username})
	res, err := s.resolver.ResolveUser(ctx, opts.Username, opts.TeamID)
	if err != nil {
		return nil, err
	}

	period, err := s.analyzePeriod(ctx, res, opts.Window, opts)
	if err != nil {
		return nil, err
	}

	analysis := &model.Analysis{
		RunID:        runID,
		User:         res.User,
		TeamID:       res.TeamID,
		Candidates:   res.Candidates,
		StatusFilter: opts.Filter.Labels(),
		GeneratedAt:  s.now().UTC(),
		Range:        *period,
	}

	if opts.CurrentMonth {
		month := CurrentMonthWindow(s.now())
		monthPeriod, err := s.analyzePeriod(ctx, res, month, opts)
		if err != nil {
			return nil, fmt.Errorf("análise do mês atual: %w", err)
		}
		analysis.CurrentMonth = monthPeriod
	}

	return analysis, nil
}

func (s *AnalysisService) analyzePeriod(ctx context.Context, res *model.UserResolution, window model.DateWindow, opts AnalysisOptions) (*model.PeriodAnalysis, error) {
	tasks, err := s.fetcher.FetchTasks(ctx, res.User.ID, res.TeamID, window, opts.Filter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		logger.Get(ctx).Warn().
			Time("from", window.From).
			Time("to", window.To).
			Msg("Nenhuma tarefa encontrada para os critérios")
	}

	if opts.Enrich {
		tasks = s.fetcher.Enrich(ctx, tasks)
	}

	agg := Aggregate(tasks, window)
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &model.PeriodAnalysis{
		Window:         window,
		Tasks:          tasks,
		Aggregate:      agg,
		StructuredText: StructuredText(tasks, agg, window),
	}, nil
}

func (s *AnalysisService) report(ctx context.Context, p model.Progress) {
	if s.progress != nil {
		s.progress.Report(ctx, p)
	}
}
