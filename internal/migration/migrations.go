package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_analysis_runs",
			Up: `
				CREATE TABLE IF NOT EXISTS analysis_runs (
					id UUID PRIMARY KEY,
					username VARCHAR(255) NOT NULL,
					user_id BIGINT NOT NULL,
					team_id VARCHAR(64) NOT NULL,
					date_from TIMESTAMPTZ NOT NULL,
					date_to TIMESTAMPTZ NOT NULL,
					status_filter TEXT[] NOT NULL DEFAULT '{}',
					total_tasks INTEGER NOT NULL DEFAULT 0,
					tasks_with_estimates INTEGER NOT NULL DEFAULT 0,
					total_estimate_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
					daily_breakdown JSONB NOT NULL DEFAULT '{}',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
			Down: `DROP TABLE IF EXISTS analysis_runs;`,
		},
		{
			Version: 2,
			Name:    "index_analysis_runs_user_created",
			Up: `
				CREATE INDEX IF NOT EXISTS idx_analysis_runs_user_created
					ON analysis_runs (user_id, created_at DESC);
				CREATE INDEX IF NOT EXISTS idx_analysis_runs_created
					ON analysis_runs (created_at DESC);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_analysis_runs_user_created;
				DROP INDEX IF EXISTS idx_analysis_runs_created;
			`,
		},
	}
}
