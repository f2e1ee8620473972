package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexiscope/internal/domain"
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

const recordColumns = "identity, title, judges, decision_date, summary, source_path, status, updated_at"

// Only terminal records are listed or searched.
const terminalOnly = "status IN ('ready', 'failed')"

// LENGTH first so numeric identities sort naturally in both dialects.
const naturalOrder = "ORDER BY LENGTH(identity), identity"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (metadata.Record, error) {
	var (
		identity, title, judges, date, summary, source, status string
		updatedAt                                              int64
	)
	if err := row.Scan(&identity, &title, &judges, &date, &summary, &source, &status, &updatedAt); err != nil {
		return metadata.Record{}, err
	}
	st, err := metadata.ParseStatus(status)
	if err != nil {
		return metadata.Record{}, err
	}
	return metadata.Reconstruct(identity, title, judges, date, summary, source, st, updatedAt), nil
}

// Get returns the record for identity or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, identity string) (metadata.Record, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+recordColumns+" FROM case_metadata WHERE identity = ?"), identity)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return metadata.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return metadata.Record{}, fmt.Errorf("get metadata %s: %w: %w", identity, domain.ErrStore, err)
	}
	return rec, nil
}

// Upsert inserts or replaces the record.
func (s *Store) Upsert(ctx context.Context, rec metadata.Record) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO case_metadata (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identity) DO UPDATE SET
			title = excluded.title,
			judges = excluded.judges,
			decision_date = excluded.decision_date,
			summary = excluded.summary,
			source_path = excluded.source_path,
			status = excluded.status,
			updated_at = excluded.updated_at`),
		rec.Identity(), rec.Title(), rec.Judges(), rec.DecisionDate(), rec.Summary(),
		rec.SourcePath(), string(rec.Status()), rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("upsert metadata %s: %w: %w", rec.Identity(), domain.ErrStore, err)
	}
	return nil
}

// Delete removes the record for identity. Missing records are ignored.
func (s *Store) Delete(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM case_metadata WHERE identity = ?"), identity); err != nil {
		return fmt.Errorf("delete metadata %s: %w: %w", identity, domain.ErrStore, err)
	}
	return nil
}

// List returns a page of terminal records and the total count.
func (s *Store) List(ctx context.Context, limit, offset int) ([]metadata.Record, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM case_metadata WHERE "+terminalOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count metadata: %w: %w", domain.ErrStore, err)
	}
	recs, err := s.query(ctx,
		"SELECT "+recordColumns+" FROM case_metadata WHERE "+terminalOnly+" "+naturalOrder+" LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// ByJudge returns records whose bench contains judge, case-insensitively.
func (s *Store) ByJudge(ctx context.Context, judge string, limit int) ([]metadata.Record, error) {
	return s.query(ctx,
		"SELECT "+recordColumns+" FROM case_metadata WHERE "+terminalOnly+
			` AND LOWER(judges) LIKE ? ESCAPE '\' `+naturalOrder+" LIMIT ?",
		likePattern(judge), limit)
}

// SearchText matches q against title, judges and summary, case-insensitively.
func (s *Store) SearchText(ctx context.Context, q string, limit int) ([]metadata.Record, error) {
	p := likePattern(q)
	return s.query(ctx,
		"SELECT "+recordColumns+" FROM case_metadata WHERE "+terminalOnly+
			` AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(judges) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\') `+
			naturalOrder+" LIMIT ?",
		p, p, p, limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]metadata.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w: %w", domain.ErrStore, err)
	}
	defer rows.Close()

	var out []metadata.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata: %w: %w", domain.ErrStore, err)
	}
	return out, nil
}
