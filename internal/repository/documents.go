package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/jmoiron/sqlx"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	UpdateS3Key(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, filename, file_size, content_type, s3_key, extracted_text, page_count, word_count, created_at)
		VALUES (:id, :filename, :file_size, :content_type, :s3_key, :extracted_text, :page_count, :word_count, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document

	query := `
		SELECT id, filename, file_size, content_type, s3_key, extracted_text, page_count, word_count, created_at
		FROM documents
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]models.Document, error) {
	docs := []models.Document{}

	query := `
		SELECT id, filename, file_size, content_type, s3_key, extracted_text, page_count, word_count, created_at
		FROM documents
		ORDER BY created_at, id
	`

	if err := r.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *documentRepository) UpdateS3Key(ctx context.Context, id, key string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE documents SET s3_key = ? WHERE id = ?`, key, id)
	return err
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}
