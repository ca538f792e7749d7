package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/BerylCAtieno/smart-doc-analysis/internal/db"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/models"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/repository"
	"github.com/BerylCAtieno/smart-doc-analysis/internal/utils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (m *memoryStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("bucket unavailable")
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key], nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type stubAnalyzer struct {
	result   *models.ExecutiveSummaryResult
	err      error
	passages []string
}

func (s *stubAnalyzer) Summarize(_ context.Context, _ string, passages []string) (*models.ExecutiveSummaryResult, error) {
	s.passages = passages
	return s.result, s.err
}

func newTestAssistant(t *testing.T, opts ...Option) (*Assistant, repository.DocumentRepository) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := repository.NewDocumentRepository(conn)
	return New(repo, utils.Discard(), opts...), repo
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUploadDocuments(t *testing.T) {
	store := &memoryStorage{}
	a, repo := newTestAssistant(t, WithStorage(store))
	ctx := context.Background()

	path := writeFile(t, "notes.txt", "Clinical trials measured patient outcomes in the cardiology ward.")
	docs, err := a.UploadDocuments(ctx, []string{path})
	require.NoError(t, err)
	require.Contains(t, docs, "notes.txt")

	doc := docs["notes.txt"]
	assert.Equal(t, 9, doc.Metadata.WordCount)
	assert.Equal(t, 1, doc.Metadata.PageCount)
	assert.Equal(t, "text/plain", doc.Metadata.ContentType)

	stored, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "documents/"+doc.ID+"/notes.txt", stored.S3Key)
	assert.Contains(t, store.objects, stored.S3Key)
}

func TestRemoveDocument(t *testing.T) {
	store := &memoryStorage{}
	a, repo := newTestAssistant(t, WithStorage(store))
	ctx := context.Background()

	docs, err := a.UploadDocuments(ctx, []string{writeFile(t, "draft.txt", "survey methodology notes")})
	require.NoError(t, err)
	id := docs["draft.txt"].ID
	require.Len(t, store.objects, 1)

	require.NoError(t, a.RemoveDocument(ctx, id))

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Empty(t, store.objects)

	report, err := a.ResearchQuery(ctx, "survey methodology", false, 5)
	require.NoError(t, err)
	assert.Empty(t, report.MainFindings)

	assert.NoError(t, a.RemoveDocument(ctx, "unknown"))
}

func TestUploadDocumentsArchiveFailureIsTolerated(t *testing.T) {
	a, repo := newTestAssistant(t, WithStorage(&memoryStorage{fail: true}))
	ctx := context.Background()

	docs, err := a.UploadDocuments(ctx, []string{writeFile(t, "a.md", "# Heading\n\nSome words here.")})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, docs["a.md"].ID)
	require.NoError(t, err)
	assert.Empty(t, stored.S3Key)
}

func TestUploadDocumentsPartialFailure(t *testing.T) {
	a, _ := newTestAssistant(t)
	ctx := context.Background()

	good := writeFile(t, "good.txt", "usable text")
	docs, err := a.UploadDocuments(ctx, []string{"/does/not/exist.txt", good})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = a.UploadDocuments(ctx, []string{"/does/not/exist.txt", writeFile(t, "old.doc", "binary")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exist.txt")
	assert.Contains(t, err.Error(), "old.doc")
}

func TestResearchQuery(t *testing.T) {
	a, _ := newTestAssistant(t)
	ctx := context.Background()

	_, err := a.UploadDocuments(ctx, []string{
		writeFile(t, "a.txt", "Clinical trials measured patient outcomes in the cardiology ward."),
		writeFile(t, "b.txt", "The marketing plan covers pricing and patient acquisition."),
		writeFile(t, "c.txt", "Nothing relevant lives here."),
	})
	require.NoError(t, err)

	report, err := a.ResearchQuery(ctx, "What are patient outcomes?", false, 5)
	require.NoError(t, err)

	want := []models.Finding{
		{FactText: "Clinical trials measured patient outcomes in the cardiology ward.", ConfidenceLevel: "high", Citations: []string{"a.txt"}},
		{FactText: "The marketing plan covers pricing and patient acquisition.", ConfidenceLevel: "medium", Citations: []string{"b.txt"}},
	}
	if diff := cmp.Diff(want, report.MainFindings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, report.TotalSources)
	assert.Equal(t, 0.75, report.ConfidenceScore)
	assert.Contains(t, report.ExecutiveSummary, "a.txt")
}

func TestResearchQueryLimitsAndTruncates(t *testing.T) {
	a, _ := newTestAssistant(t)
	ctx := context.Background()

	long := strings.Repeat("budget ", 60)
	_, err := a.UploadDocuments(ctx, []string{
		writeFile(t, "one.txt", long),
		writeFile(t, "two.txt", "budget review"),
	})
	require.NoError(t, err)

	report, err := a.ResearchQuery(ctx, "budget", false, 1)
	require.NoError(t, err)
	require.Len(t, report.MainFindings, 1)
	assert.Equal(t, []string{"one.txt"}, report.MainFindings[0].Citations)
	assert.True(t, strings.HasSuffix(report.MainFindings[0].FactText, "..."))
	assert.Len(t, []rune(report.MainFindings[0].FactText), MaxFactLength+3)
}

func TestResearchQueryNoMatches(t *testing.T) {
	a, _ := newTestAssistant(t)

	report, err := a.ResearchQuery(context.Background(), "quantum", false, 5)
	require.NoError(t, err)
	assert.Empty(t, report.MainFindings)
	assert.Equal(t, 0, report.TotalSources)
	assert.Contains(t, report.ExecutiveSummary, "No passages")
}

func TestResearchQueryEmpty(t *testing.T) {
	a, _ := newTestAssistant(t)
	_, err := a.ResearchQuery(context.Background(), "   ", false, 5)
	require.ErrorIs(t, err, utils.ErrEmptyQuery)
}

func TestResearchQueryUsesAnalyzer(t *testing.T) {
	stub := &stubAnalyzer{result: &models.ExecutiveSummaryResult{ExecutiveSummary: "Outcomes improved.", Confidence: 0.9}}
	a, _ := newTestAssistant(t, WithAnalyzer(stub))
	ctx := context.Background()

	_, err := a.UploadDocuments(ctx, []string{writeFile(t, "a.txt", "Patient outcomes improved.")})
	require.NoError(t, err)

	report, err := a.ResearchQuery(ctx, "patient outcomes", false, 5)
	require.NoError(t, err)
	assert.Equal(t, "Outcomes improved.", report.ExecutiveSummary)
	assert.Equal(t, 0.9, report.ConfidenceScore)
	assert.Equal(t, []string{"Patient outcomes improved."}, stub.passages)

	stub.err = errors.New("rate limited")
	report, err = a.ResearchQuery(ctx, "patient outcomes", false, 5)
	require.NoError(t, err)
	assert.Contains(t, report.ExecutiveSummary, "Found 1 relevant passages")
}

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"patient", "outcomes"}, queryTerms("What are the patient outcomes? patient!"))
	assert.Equal(t, []string{"ai", "ml"}, queryTerms("AI, ML"))
}
