// Package document stores language-scoped informational pages shown in the mini-app.
package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals a missing document.
var ErrNotFound = errors.New("document not found")

// Document is a titled text page in one language.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	TextContent string    `json:"textContent"`
	Language    string    `json:"language"`
}

// Repository persists documents.
type Repository interface {
	ListByLanguage(ctx context.Context, lang string) ([]Document, error)
	Find(ctx context.Context, id uuid.UUID) (Document, error)
	Save(ctx context.Context, d Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed document repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByLanguage returns all documents in the language.
func (r *PostgresRepository) ListByLanguage(ctx context.Context, lang string) ([]Document, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, text_content, language FROM documents WHERE language = $1`, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.TextContent, &d.Language); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Find fetches a document by id.
func (r *PostgresRepository) Find(ctx context.Context, id uuid.UUID) (Document, error) {
	var d Document
	err := r.db.QueryRow(ctx, `SELECT id, title, text_content, language FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.Title, &d.TextContent, &d.Language)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

// Save upserts a document.
func (r *PostgresRepository) Save(ctx context.Context, d Document) error {
	_, err := r.db.Exec(ctx, `INSERT INTO documents (id, title, text_content, language)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, text_content = EXCLUDED.text_content, language = EXCLUDED.language`,
		d.ID, d.Title, d.TextContent, d.Language)
	return err
}

// Delete removes a document.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
