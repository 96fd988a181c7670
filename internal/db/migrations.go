package db

import (
	"fmt"

	"gorm.io/gorm"
)

// users and profiles are owned by the hosting platform and assumed present;
// the pipeline only joins against them to resolve emails.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'entry_status') THEN
			CREATE TYPE entry_status AS ENUM ('pending', 'processing', 'sent', 'failed');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID REFERENCES users(id),
		email TEXT,
		hours INTEGER NOT NULL DEFAULT 0,
		minutes INTEGER NOT NULL DEFAULT 0,
		category VARCHAR(128) NOT NULL,
		notes TEXT,
		count INTEGER,
		entry_date DATE NOT NULL,
		status entry_status NOT NULL DEFAULT 'pending',
		contract_id VARCHAR(64),
		deel_timesheet_id VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'time_entries' AND column_name = 'contract_id') THEN
			ALTER TABLE time_entries ADD COLUMN contract_id VARCHAR(64);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'time_entries' AND column_name = 'deel_timesheet_id') THEN
			ALTER TABLE time_entries ADD COLUMN deel_timesheet_id VARCHAR(64);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'time_entries' AND column_name = 'count') THEN
			ALTER TABLE time_entries ADD COLUMN count INTEGER;
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_status ON time_entries (status);`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_contract_id ON time_entries (contract_id) WHERE contract_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_unsubmitted ON time_entries (entry_date, created_at) WHERE deel_timesheet_id IS NULL;`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		key VARCHAR(128) PRIMARY KEY,
		value TEXT NOT NULL,
		description TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
