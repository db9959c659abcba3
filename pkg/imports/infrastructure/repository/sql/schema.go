package sql

import (
	"context"
	"fmt"

	"github.com/tigerroll/reimport/pkg/imports/adapter/database"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

// schemaStatements holds the DDL for the framework's own tables. The types
// are restricted to what MySQL, PostgreSQL and SQLite all accept, so the
// same statements bootstrap every supported backend.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS import_batches (
		id              VARCHAR(36) PRIMARY KEY,
		kind            VARCHAR(255) NOT NULL,
		status          VARCHAR(20) NOT NULL,
		source_info     TEXT,
		metadata        TEXT,
		error_message   TEXT,
		retry_count     INTEGER NOT NULL DEFAULT 0,
		parent_batch_id VARCHAR(36),
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL,
		started_at      TIMESTAMP NULL,
		completed_at    TIMESTAMP NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_batch_items (
		id             VARCHAR(36) PRIMARY KEY,
		batch_id       VARCHAR(36) NOT NULL,
		item_index     INTEGER NOT NULL,
		status         VARCHAR(20) NOT NULL,
		source_data    TEXT,
		processed_data TEXT,
		target_table   VARCHAR(255),
		target_id      VARCHAR(255),
		error_message  TEXT,
		processed_at   TIMESTAMP NULL,
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_logs (
		id         VARCHAR(36) PRIMARY KEY,
		batch_id   VARCHAR(36) NOT NULL,
		item_id    VARCHAR(36),
		level      VARCHAR(10) NOT NULL,
		message    TEXT NOT NULL,
		details    TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
}

// indexStatements holds the secondary indexes. MySQL has no
// CREATE INDEX IF NOT EXISTS, so these are applied best effort: an error on
// an already-indexed table is logged and ignored.
var indexStatements = []string{
	`CREATE INDEX idx_import_batches_parent ON import_batches (parent_batch_id)`,
	`CREATE INDEX idx_import_batch_items_batch ON import_batch_items (batch_id, item_index)`,
	`CREATE INDEX idx_import_batch_items_status ON import_batch_items (batch_id, status)`,
	`CREATE INDEX idx_import_logs_batch ON import_logs (batch_id)`,
}

// ApplySchema creates the framework tables if they do not exist yet.
// Intended for application startup; a dedicated migration pipeline can
// manage the tables instead, in which case this call is a no-op.
func ApplySchema(ctx context.Context, conn database.DBConnection) error {
	for _, stmt := range schemaStatements {
		if _, err := conn.ExecuteRaw(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	for _, stmt := range indexStatements {
		if _, err := conn.ExecuteRaw(ctx, stmt); err != nil {
			logger.Debugf("Index statement skipped on connection '%s': %v", conn.Name(), err)
		}
	}
	logger.Debugf("Import schema is up to date on connection '%s'.", conn.Name())
	return nil
}
