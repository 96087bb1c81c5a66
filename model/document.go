package model

import (
	"time"
)

// Document represents an uploaded contract file subject to analysis
type Document struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	FileName   string    `json:"file_name"`
	ObjectName string    `json:"object_name"`
	Status     string    `json:"status"` // pending, processing, success, error
	ErrorMsg   string    `json:"error_msg,omitempty"`
	UserID     string    `json:"user_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Document status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusError      = "error"
)

// Analysis is the most recent analysis result for a document
type Analysis struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	DocumentID string    `json:"document_id" gorm:"uniqueIndex"`
	Summary    string    `json:"summary"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	SourceName string    `json:"source_name"`
	Status     string    `json:"status"` // completed
}

// DocumentVersion is an immutable full-text snapshot of a document.
// Version numbers for a document are dense, start at 1 and never change.
type DocumentVersion struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	DocumentID    string    `json:"document_id" gorm:"uniqueIndex:idx_doc_version"`
	VersionNumber int       `json:"version_number" gorm:"uniqueIndex:idx_doc_version"`
	ContentText   string    `json:"content_text"`
	CreatedAt     time.Time `json:"created_at"`
}
