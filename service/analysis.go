package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CaioZinDaLua/secure-contract-ai-review/config"
	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
	"github.com/CaioZinDaLua/secure-contract-ai-review/pkg/logger"
)

// ObjectDownloader fetches stored file bytes for the extraction pipeline.
type ObjectDownloader interface {
	DownloadFile(ctx context.Context, objectName string) ([]byte, error)
}

// AnalysisService drives the extraction pipeline for one document:
// credit check, download, AI analysis, analysis row, initial version,
// credit decrement and status lifecycle.
type AnalysisService struct {
	store          *Store
	blobs          ObjectDownloader
	extractor      *ExtractionService
	limiter        *UsageLimiter
	analysisLimit  int
	analysisWindow time.Duration
}

func NewAnalysisService(store *Store, blobs ObjectDownloader, extractor *ExtractionService, limiter *UsageLimiter, limits *config.LimitsConfig) *AnalysisService {
	return &AnalysisService{
		store:          store,
		blobs:          blobs,
		extractor:      extractor,
		limiter:        limiter,
		analysisLimit:  limits.AnalysisPerWindow,
		analysisWindow: time.Duration(limits.AnalysisWindowSecs) * time.Second,
	}
}

// Run analyzes the document. On any failure the document status flips to
// error with the stored message and the user's credits are untouched.
func (s *AnalysisService) Run(ctx context.Context, documentID string) error {
	doc, err := s.store.GetDocument(documentID)
	if err != nil {
		return err
	}

	// Credits gate new analyses; the check happens before any AI call.
	ent, err := s.store.GetEntitlement(doc.UserID)
	if err != nil {
		return err
	}
	if ent.Credits <= 0 {
		return &ValidationError{Reason: "Créditos insuficientes para nova análise"}
	}

	if !s.limiter.TryConsume(doc.UserID, "analysis", s.analysisLimit, s.analysisWindow) {
		return ErrRateLimited
	}

	s.store.AuditEvent(doc.UserID, "contract_analysis_started",
		fmt.Sprintf(`{"document_id":%q,"file_name":%q}`, documentID, doc.FileName))

	if err := s.store.UpdateDocumentStatus(documentID, model.StatusProcessing, ""); err != nil {
		return err
	}

	if err := s.analyze(ctx, doc); err != nil {
		if statusErr := s.store.UpdateDocumentStatus(documentID, model.StatusError, err.Error()); statusErr != nil {
			logger.Error(ctx, "failed to record analysis error",
				"document_id", documentID,
				"error", statusErr,
			)
		}
		s.store.AuditEvent(doc.UserID, "contract_analysis_failed",
			fmt.Sprintf(`{"document_id":%q,"error":%q}`, documentID, err.Error()))
		return err
	}

	s.store.AuditEvent(doc.UserID, "contract_analysis_completed",
		fmt.Sprintf(`{"document_id":%q,"file_name":%q}`, documentID, doc.FileName))
	return nil
}

func (s *AnalysisService) analyze(ctx context.Context, doc *model.Document) error {
	data, err := s.blobs.DownloadFile(ctx, doc.ObjectName)
	if err != nil {
		return &UpstreamError{Op: "download", Detail: err.Error()}
	}
	if int64(len(data)) > MaxUploadSize {
		return &ValidationError{Reason: "Arquivo muito grande. Máximo permitido: 10MB"}
	}

	result, err := s.extractor.Analyze(ctx, doc.FileName, data)
	if err != nil {
		return err
	}

	if err := s.store.SaveAnalysis(&model.Analysis{
		DocumentID: doc.ID,
		Summary:    result.Summary,
		AnalyzedAt: result.AnalyzedAt,
		SourceName: result.SourceName,
		Status:     result.Status,
	}); err != nil {
		return err
	}

	// Seed version 1 so the correction chat has a text to work against.
	// The audio path yields a raw transcript; other paths fall back to
	// the analysis text. Re-analysis never rewrites existing versions.
	latest, err := s.store.LatestVersion(doc.ID)
	if err != nil {
		return err
	}
	if latest == nil {
		text := result.ExtractedText
		if text == "" {
			text = result.Summary
		}
		if _, err := s.store.AppendVersion(doc.ID, text); err != nil {
			return err
		}
	}

	if err := s.store.DecrementCredits(doc.UserID); err != nil {
		return err
	}

	return s.store.UpdateDocumentStatus(doc.ID, model.StatusSuccess, "")
}
