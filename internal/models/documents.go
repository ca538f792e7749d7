package models

import (
	"time"
)

type Document struct {
	ID            string    `json:"id" db:"id"`
	Filename      string    `json:"filename" db:"filename"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	ContentType   string    `json:"content_type" db:"content_type"`
	S3Key         string    `json:"s3_key" db:"s3_key"`
	ExtractedText string    `json:"extracted_text,omitempty" db:"extracted_text"`
	PageCount     int       `json:"page_count" db:"page_count"`
	WordCount     int       `json:"word_count" db:"word_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ParsedUpload is the single file extracted from a multipart request.
type ParsedUpload struct {
	Filename string
	Content  []byte
}

type DocumentMetadata struct {
	PageCount   int    `json:"page_count"`
	WordCount   int    `json:"word_count"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// AnalyzedDocument is what the assistant returns for an ingested file.
type AnalyzedDocument struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	FullText string           `json:"full_text"`
	Metadata DocumentMetadata `json:"metadata"`
}

type Finding struct {
	FactText        string   `json:"fact_text"`
	ConfidenceLevel string   `json:"confidence_level"`
	Citations       []string `json:"citations"`
}

type ResearchReport struct {
	Query            string    `json:"query"`
	ExecutiveSummary string    `json:"executive_summary"`
	ConfidenceScore  float64   `json:"confidence_score"`
	TotalSources     int       `json:"total_sources"`
	MainFindings     []Finding `json:"main_findings"`
}

// ExecutiveSummaryResult is the structured reply expected from the LLM.
type ExecutiveSummaryResult struct {
	ExecutiveSummary string  `json:"executive_summary"`
	Confidence       float64 `json:"confidence"`
}
