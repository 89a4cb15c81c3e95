package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/onebox/internal/model"
)

// CreateAgendaDoc inserts a new reference document. If the doc has no
// ID, a new UUID is generated and written back to the struct.
func (s *SQLiteStore) CreateAgendaDoc(ctx context.Context, doc *model.AgendaDoc) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(emptyIfNil(doc.Tags))
	if err != nil {
		return fmt.Errorf("marshaling tags for agenda doc %s: %w", doc.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agenda_docs (id, title, content, tags, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Content, string(tagsJSON), doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating agenda doc %s: %w", doc.ID, err)
	}

	return nil
}

// ListAgendaDocs retrieves all reference documents in creation order.
// The stable ordering keeps suggestion tie-breaking deterministic.
func (s *SQLiteStore) ListAgendaDocs(ctx context.Context) ([]model.AgendaDoc, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM agenda_docs ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying agenda docs: %w", err)
	}
	defer rows.Close()

	var docs []model.AgendaDoc
	for rows.Next() {
		doc, err := scanAgendaDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// scanAgendaDoc scans an agenda doc row from a sqlx.Rows result set.
func scanAgendaDoc(rows *sqlx.Rows) (model.AgendaDoc, error) {
	var (
		doc       model.AgendaDoc
		tagsJSON  string
		createdAt time.Time
	)

	err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &tagsJSON, &createdAt)
	if err != nil {
		return model.AgendaDoc{}, fmt.Errorf("scanning agenda doc row: %w", err)
	}

	doc.CreatedAt = createdAt

	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return model.AgendaDoc{}, fmt.Errorf("unmarshaling tags: %w", err)
	}

	return doc, nil
}
