package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

	// Submitted vehicles. Make/model/year/trim hold the caller-supplied
	// metadata, which may be partial; the resolved identity lives in the
	// analysis result payload.
	`CREATE TABLE IF NOT EXISTS vehicles (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		make            TEXT,
		model           TEXT,
		year            INT,
		trim            TEXT,
		asking_price    NUMERIC(12,2),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_created_at ON vehicles(created_at DESC);`,

	`CREATE TABLE IF NOT EXISTS vehicle_photos (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id      UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		filename        TEXT NOT NULL,
		category        TEXT NOT NULL,
		content_type    TEXT,
		size_bytes      BIGINT,
		storage_url     TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_photos_vehicle_id ON vehicle_photos(vehicle_id);`,

	// One analysis run per vehicle submission. The result column carries
	// the full pipeline output as JSON once the run completes.
	`CREATE TABLE IF NOT EXISTS analyses (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		vehicle_id      UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		status          TEXT NOT NULL,
		stage           TEXT,
		result          JSONB,
		error           TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at    TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_vehicle_id ON analyses(vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
