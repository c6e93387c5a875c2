package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"leadtime/domain/core"
	"leadtime/domain/work"
)

// Store persists derived work items and aggregate summaries
type Store struct {
	db *sqlx.DB
}

// Open connects to postgres and returns a store
func Open(url string) (*Store, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewStore(db), nil
}

// NewStore creates a store over an existing connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS work_items (
			id                 BIGSERIAL PRIMARY KEY,
			sync_id            UUID NOT NULL,
			ext_id             TEXT NOT NULL,
			assignee           TEXT NOT NULL,
			estimate           TEXT NOT NULL,
			dev_start          TIMESTAMP NOT NULL,
			dev_done           TIMESTAMP NOT NULL,
			prod_done          TIMESTAMP NOT NULL,
			dev_done_workdays  INTEGER NOT NULL,
			prod_done_workdays INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS group_summaries (
			id         BIGSERIAL PRIMARY KEY,
			sync_id    UUID NOT NULL,
			source     TEXT NOT NULL,
			assignee   TEXT NOT NULL,
			estimate   TEXT NOT NULL,
			summary    JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_group_summaries_group
			ON group_summaries (assignee, estimate);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SaveDocument stores every group of an evidence document under one
// sync id: the raw evidence items plus the summary as JSONB.
func (s *Store) SaveDocument(ctx context.Context, syncID core.ID, source string, doc work.Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, assignee := range doc.Assignees() {
		for _, estimate := range doc.Estimates(assignee) {
			summary := doc[assignee][estimate]
			if err := insertSummary(ctx, tx, syncID, source, assignee, estimate, summary); err != nil {
				return err
			}
			for _, item := range summary.Evidence {
				if err := insertItem(ctx, tx, syncID, item); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}

func insertSummary(ctx context.Context, tx *sqlx.Tx, syncID core.ID, source, assignee, estimate string, summary *work.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO group_summaries (sync_id, source, assignee, estimate, summary)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, query, syncID.String(), source, assignee, estimate, payload); err != nil {
		return fmt.Errorf("failed to insert summary for (%s, %s): %w", assignee, estimate, err)
	}
	return nil
}

func insertItem(ctx context.Context, tx *sqlx.Tx, syncID core.ID, item *work.Item) error {
	query := `
		INSERT INTO work_items (
			sync_id, ext_id, assignee, estimate,
			dev_start, dev_done, prod_done,
			dev_done_workdays, prod_done_workdays
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.ExecContext(ctx, query,
		syncID.String(),
		item.ID,
		item.Assignee,
		item.Estimate,
		item.DevStart.Time(),
		item.DevDone.Time(),
		item.ProdDone.Time(),
		item.DevDoneWorkdays,
		item.ProdDoneWorkdays,
	)
	if err != nil {
		return fmt.Errorf("failed to insert work item %s: %w", item.ID, err)
	}
	return nil
}

// ListEstimates returns the distinct estimate buckets seen for an
// assignee, or across all assignees when assignee is empty.
func (s *Store) ListEstimates(ctx context.Context, assignee string) ([]string, error) {
	var estimates []string
	var err error
	if assignee == "" {
		err = s.db.SelectContext(ctx, &estimates,
			`SELECT estimate FROM work_items GROUP BY estimate ORDER BY estimate`)
	} else {
		err = s.db.SelectContext(ctx, &estimates,
			`SELECT estimate FROM work_items WHERE assignee = $1 GROUP BY estimate ORDER BY estimate`, assignee)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	return estimates, nil
}

// LatestSummary returns the most recently stored summary for a group,
// or nil when nothing has been stored for it yet.
func (s *Store) LatestSummary(ctx context.Context, assignee, estimate string) (*work.Summary, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `
		SELECT summary FROM group_summaries
		WHERE assignee = $1 AND estimate = $2
		ORDER BY created_at DESC LIMIT 1`, assignee, estimate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary for (%s, %s): %w", assignee, estimate, err)
	}

	var summary work.Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}
