package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/unowned-ai/nstil/pkg/logger"
)

// TargetSchemaVersion is the highest schema version this build supports
// for the journaldb component. The CLI passes it to UpgradeDB.
var TargetSchemaVersion = int64(len(migrations))

const (
	// JournalDBComponent names the main database component in nstil_versions.
	JournalDBComponent = "journaldb"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found or the versions table doesn't exist.
func GetComponentSchemaVersion(ctx context.Context, db *sql.DB, componentName string) (int64, error) {
	row := db.QueryRowContext(ctx, `SELECT version FROM nstil_versions WHERE component = ?;`, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "nstil_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema applies every migration up to schemaVersionToSet on an
// empty database and records the version.
func InitializeSchema(ctx context.Context, db *sql.DB, schemaVersionToSet int64) error {
	return applyMigrations(ctx, db, 0, schemaVersionToSet)
}

// applyMigrations runs migrations (from, to] in a single transaction. Versions
// past the last known migration are recorded without further DDL, which lets
// tests simulate databases written by newer builds.
func applyMigrations(ctx context.Context, db *sql.DB, from, to int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for v := from; v < to && v < int64(len(migrations)); v++ {
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			return fmt.Errorf("failed to execute schema v%d SQL: %w", v+1, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO nstil_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`,
		JournalDBComponent, to)
	if err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", JournalDBComponent, to, err)
	}
	return tx.Commit()
}

// UpgradeDB brings the JournalDBComponent schema to appTargetSchemaVersion.
// dbIdentifierForLog is used for logging only.
func UpgradeDB(ctx context.Context, db *sql.DB, log logger.Logger, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.String("component", JournalDBComponent), logger.String("database", dbIdentifierForLog))

	currentDBVersion, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		return err
	}

	switch {
	case currentDBVersion == appTargetSchemaVersion:
		log.Debug("schema already up to date", logger.Int("version", int(currentDBVersion)))
		return nil
	case currentDBVersion > appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", JournalDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	case appTargetSchemaVersion > int64(len(migrations)):
		return fmt.Errorf("component %s in database '%s' has schema version %d; no migration to target schema version %d is available", JournalDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}

	log.Info("upgrading schema", logger.Int("from", int(currentDBVersion)), logger.Int("to", int(appTargetSchemaVersion)))
	if err := applyMigrations(ctx, db, currentDBVersion, appTargetSchemaVersion); err != nil {
		return fmt.Errorf("failed to upgrade component %s in database '%s': %w", JournalDBComponent, dbIdentifierForLog, err)
	}
	return nil
}
