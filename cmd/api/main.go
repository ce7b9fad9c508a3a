package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/cache"
	"github.com/cleberrangel/clickup-task-analyzer/internal/client"
	"github.com/cleberrangel/clickup-task-analyzer/internal/config"
	"github.com/cleberrangel/clickup-task-analyzer/internal/database"
	"github.com/cleberrangel/clickup-task-analyzer/internal/handler"
	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/metrics"
	"github.com/cleberrangel/clickup-task-analyzer/internal/middleware"
	"github.com/cleberrangel/clickup-task-analyzer/internal/migration"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/cleberrangel/clickup-task-analyzer/internal/repository"
	"github.com/cleberrangel/clickup-task-analyzer/internal/service"
	"github.com/cleberrangel/clickup-task-analyzer/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "2.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	metrics.Init()
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Dur("request_interval", cfg.RequestInterval).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("ClickUp Task Analyzer iniciando")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Histórico (opcional)
	var (
		db      *sql.DB
		history service.HistoryStore
		lister  handler.HistoryLister
	)
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(ctx, database.Config{DSN: cfg.DatabaseURL})
		if err != nil {
			log.Fatal().Err(err).Msg("Erro ao conectar ao banco")
		}
		defer database.Close(db)

		if err := migration.NewMigrator(db).Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Erro ao executar migrations")
		}
		repo := repository.NewHistoryRepository(db)
		history, lister = repo, repo
	} else {
		log.Warn().Msg("DATABASE_URL não configurada, histórico desabilitado")
	}

	// Inicializa dependências
	clickupClient, err := client.NewClient(client.Options{
		APIKey:  cfg.ClickUpAPIKey,
		BaseURL: cfg.ClickUpBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao criar cliente ClickUp")
	}

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	results := cache.New[*model.Analysis](cfg.CacheTTL)
	defer results.Stop()

	fetcher := service.NewTaskFetcher(clickupClient, service.NewRequestLimiter(cfg.RequestInterval), wsHub)
	analysisService := service.NewAnalysisService(service.NewUserResolver(clickupClient), fetcher, history, results, wsHub)

	queue := service.NewAnalysisQueue(analysisService, service.NewWebhookService(0), service.QueueConfig{Workers: 2})
	queue.Start()
	defer queue.Stop()

	analysisHandler := handler.NewAnalysisHandler(analysisService, queue)
	historyHandler := handler.NewHistoryHandler(lister)
	healthHandler := handler.NewHealthHandler(db, wsHub, Version)
	wsHandler := handler.NewWebSocketHandler(wsHub)

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	// Públicos
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", healthHandler.GetMetrics)

	// Websocket aceita ?token= porque o browser não envia headers no upgrade
	r.GET("/api/v1/ws/progress", middleware.BearerAuth(middleware.AuthConfig{
		TokenAPI:        cfg.TokenAPI,
		AllowQueryToken: true,
	}), wsHandler.HandleConnection)

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(middleware.AuthConfig{TokenAPI: cfg.TokenAPI}))
	{
		api.POST("/analysis", analysisHandler.RunAnalysis)
		api.POST("/analysis/xlsx", analysisHandler.ExportXLSX)
		api.GET("/users/resolve", analysisHandler.ResolveUser)
		api.GET("/history", historyHandler.ListHistory)
		api.GET("/ws/stats", wsHandler.GetConnectionStats)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro no shutdown do servidor")
	}
}
