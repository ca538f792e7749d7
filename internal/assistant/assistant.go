// Package assistant ingests uploaded files and answers research queries
// against the stored documents.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/analyzer"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/extractor"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/repository"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/storage"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	ChunkSize    = 600
	ChunkOverlap = 80
)

type Assistant struct {
	docs     repository.DocumentRepository
	storage  storage.Storage
	analyzer analyzer.Analyzer
	splitter textsplitter.TextSplitter
	logger   *utils.Logger
	now      func() time.Time
}

type Option func(*Assistant)

// WithStorage archives every ingested original to s.
func WithStorage(s storage.Storage) Option {
	return func(a *Assistant) { a.storage = s }
}

// WithAnalyzer lets an LLM write research executive summaries.
func WithAnalyzer(an analyzer.Analyzer) Option {
	return func(a *Assistant) { a.analyzer = an }
}

func New(docs repository.DocumentRepository, logger *utils.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		docs: docs,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(ChunkSize),
			textsplitter.WithChunkOverlap(ChunkOverlap),
		),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UploadDocuments ingests each path and returns the analyzed documents keyed
// by base filename. A path that fails is logged and skipped; the call only
// fails when no path could be ingested.
func (a *Assistant) UploadDocuments(ctx context.Context, paths []string) (map[string]*models.AnalyzedDocument, error) {
	docs := make(map[string]*models.AnalyzedDocument, len(paths))

	var errs []error
	for _, path := range paths {
		doc, err := a.ingest(ctx, path)
		if err != nil {
			a.logger.Error("Failed to ingest document", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		docs[doc.Name] = doc
	}

	if len(docs) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return docs, nil
}

func (a *Assistant) ingest(ctx context.Context, path string) (*models.AnalyzedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	res, err := extractor.Extract(name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("no text could be extracted from the document")
	}
	if len(res.SkippedPages) > 0 {
		a.logger.Warn("Skipped unreadable pages", "filename", name, "pages", res.SkippedPages, "total_pages", res.PageCount)
	}

	doc := &models.Document{
		ID:            utils.GenerateID(),
		Filename:      name,
		FileSize:      int64(len(data)),
		ContentType:   res.ContentType,
		ExtractedText: res.Text,
		PageCount:     res.PageCount,
		WordCount:     len(strings.Fields(res.Text)),
		CreatedAt:     a.now().UTC(),
	}

	if a.storage != nil {
		key := storage.ArchiveKey(doc.ID, name)
		if err := a.storage.Upload(ctx, key, data, res.ContentType); err != nil {
			a.logger.Warn("Failed to archive original", "error", err, "s3_key", key)
		} else {
			doc.S3Key = key
		}
	}

	if err := a.docs.Create(ctx, doc); err != nil {
		if doc.S3Key != "" {
			_ = a.storage.Delete(ctx, doc.S3Key)
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	a.logger.Info("Document ingested",
		"id", doc.ID,
		"filename", name,
		"content_type", doc.ContentType,
		"pages", doc.PageCount,
		"words", doc.WordCount)

	return &models.AnalyzedDocument{
		ID:       doc.ID,
		Name:     name,
		FullText: doc.ExtractedText,
		Metadata: models.DocumentMetadata{
			PageCount:   doc.PageCount,
			WordCount:   doc.WordCount,
			ContentType: doc.ContentType,
			FileSize:    doc.FileSize,
		},
	}, nil
}

// RemoveDocument deletes a stored document and its archived original. An
// unknown id is not an error.
func (a *Assistant) RemoveDocument(ctx context.Context, id string) error {
	doc, err := a.docs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil
	}

	if err := a.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if doc.S3Key != "" && a.storage != nil {
		if err := a.storage.Delete(ctx, doc.S3Key); err != nil {
			a.logger.Warn("Failed to delete archived original", "error", err, "s3_key", doc.S3Key)
		}
	}

	a.logger.Info("Document removed", "id", id, "filename", doc.Filename)
	return nil
}
