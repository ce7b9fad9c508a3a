package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
)

// Migration representa uma migração de banco de dados
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrator aplica as migrações em ordem de versão
type Migrator struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrator cria um migrator com as migrações do projeto
func NewMigrator(db *sql.DB) *Migrator {
	migrations := getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return &Migrator{db: db, migrations: migrations}
}

// Run executa todas as migrações pendentes
func (m *Migrator) Run(ctx context.Context) error {
	log := logger.Get(ctx)

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("erro ao obter versão atual: %w", err)
	}

	log.Info().Int("current_version", current).Msg("Versão atual do banco de dados")

	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("Executando migração")

		if err := m.apply(ctx, mig.Up, "INSERT INTO schema_migrations (version) VALUES ($1)", mig.Version); err != nil {
			return fmt.Errorf("erro ao executar migração %d (%s): %w", mig.Version, mig.Name, err)
		}
	}

	return nil
}

// Rollback desfaz a última migração aplicada
func (m *Migrator) Rollback(ctx context.Context) error {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("erro ao obter versão atual: %w", err)
	}
	if current == 0 {
		return nil
	}

	for _, mig := range m.migrations {
		if mig.Version != current {
			continue
		}
		logger.Get(ctx).Info().Int("version", mig.Version).Str("name", mig.Name).Msg("Desfazendo migração")
		if err := m.apply(ctx, mig.Down, "DELETE FROM schema_migrations WHERE version = $1", mig.Version); err != nil {
			return fmt.Errorf("erro ao desfazer migração %d (%s): %w", mig.Version, mig.Name, err)
		}
		return nil
	}
	return fmt.Errorf("migração %d não encontrada", current)
}

// CurrentVersion retorna a maior versão aplicada (0 se nenhuma)
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	return err
}

// apply roda o SQL da migração e atualiza schema_migrations na mesma transação
func (m *Migrator) apply(ctx context.Context, stmt, bookkeeping string, version int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}
