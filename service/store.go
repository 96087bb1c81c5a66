package service

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/CaioZinDaLua/secure-contract-ai-review/config"
	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
)

// Store persists documents, analyses, versions, chat turns, entitlements
// and audit logs in SQLite via GORM.
type Store struct {
	db             *gorm.DB
	defaultCredits int
	appendMu       sync.Map // document ID -> *sync.Mutex
}

// NewStore opens the database and runs migrations.
func NewStore(cfg *config.DatabaseConfig, defaultCredits int) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.Document{},
		&model.Analysis{},
		&model.DocumentVersion{},
		&model.ChatTurn{},
		&model.Entitlement{},
		&model.AuditLog{},
	); err != nil {
		return nil, err
	}

	slog.Info("store initialized", "path", cfg.Path)

	return &Store{db: db, defaultCredits: defaultCredits}, nil
}

// --- Documents ---

func (s *Store) CreateDocument(doc *model.Document) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()
	if err := s.db.Create(doc).Error; err != nil {
		return &PersistenceError{Op: "create document", Err: err}
	}
	return nil
}

// GetDocument returns the document with the given ID or ErrNotFound.
func (s *Store) GetDocument(id string) (*model.Document, error) {
	var doc model.Document
	err := s.db.First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get document", Err: err}
	}
	return &doc, nil
}

func (s *Store) ListDocuments(userID string) ([]model.Document, error) {
	var docs []model.Document
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list documents", Err: err}
	}
	return docs, nil
}

func (s *Store) UpdateDocumentStatus(id, status, errMsg string) error {
	err := s.db.Model(&model.Document{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"error_msg":  errMsg,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return &PersistenceError{Op: "update document status", Err: err}
	}
	return nil
}

// DeleteDocument removes the document and everything derived from it:
// analysis, versions and chat turns.
func (s *Store) DeleteDocument(id string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.ChatTurn{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.DocumentVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&model.Analysis{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, "id = ?", id).Error
	})
	if err != nil {
		return &PersistenceError{Op: "delete document", Err: err}
	}
	return nil
}

// --- Analyses ---

// SaveAnalysis stores the analysis for a document. The most recent one
// wins: an existing row for the same document is replaced.
func (s *Store) SaveAnalysis(a *model.Analysis) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"summary", "analyzed_at", "source_name", "status",
		}),
	}).Create(a).Error
	if err != nil {
		return &PersistenceError{Op: "save analysis", Err: err}
	}
	return nil
}

// GetAnalysis returns the analysis for a document, or nil if none exists.
func (s *Store) GetAnalysis(documentID string) (*model.Analysis, error) {
	var a model.Analysis
	err := s.db.First(&a, "document_id = ?", documentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get analysis", Err: err}
	}
	return &a, nil
}

// --- Document versions ---

func (s *Store) lockDocument(documentID string) *sync.Mutex {
	mu, _ := s.appendMu.LoadOrStore(documentID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AppendVersion writes the next version for a document and returns its
// number. The read-max-insert step is serialized per document, with the
// unique (document_id, version_number) index as the collision backstop:
// a collision surfaces as a ConsistencyError, never a silent overwrite.
func (s *Store) AppendVersion(documentID, text string) (int, error) {
	mu := s.lockDocument(documentID)
	mu.Lock()
	defer mu.Unlock()

	var next int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var max int
		if err := tx.Model(&model.DocumentVersion{}).
			Where("document_id = ?", documentID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&max).Error; err != nil {
			return err
		}

		next = max + 1
		return tx.Create(&model.DocumentVersion{
			DocumentID:    documentID,
			VersionNumber: next,
			ContentText:   text,
			CreatedAt:     time.Now(),
		}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &ConsistencyError{DocumentID: documentID, VersionNumber: next}
		}
		return 0, &PersistenceError{Op: "append version", Err: err}
	}
	return next, nil
}

// LatestVersion returns the highest-numbered version, or nil if none exists.
func (s *Store) LatestVersion(documentID string) (*model.DocumentVersion, error) {
	var v model.DocumentVersion
	err := s.db.Where("document_id = ?", documentID).
		Order("version_number DESC").First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "latest version", Err: err}
	}
	return &v, nil
}

func (s *Store) ListVersions(documentID string) ([]model.DocumentVersion, error) {
	var versions []model.DocumentVersion
	err := s.db.Where("document_id = ?", documentID).
		Order("version_number ASC").Find(&versions).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list versions", Err: err}
	}
	return versions, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Chat turns ---

func (s *Store) AppendChatTurn(turn *model.ChatTurn) error {
	turn.CreatedAt = time.Now()
	if err := s.db.Create(turn).Error; err != nil {
		return &PersistenceError{Op: "append chat turn", Err: err}
	}
	return nil
}

// RecentChatTurns returns the last n turns for a document, oldest first.
func (s *Store) RecentChatTurns(documentID string, n int) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := s.db.Where("document_id = ?", documentID).
		Order("created_at DESC").Limit(n).Find(&turns).Error
	if err != nil {
		return nil, &PersistenceError{Op: "recent chat turns", Err: err}
	}
	// Reverse into chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// CountChatTurns returns the number of turns stored for a document.
func (s *Store) CountChatTurns(documentID string) (int64, error) {
	var count int64
	err := s.db.Model(&model.ChatTurn{}).
		Where("document_id = ?", documentID).Count(&count).Error
	if err != nil {
		return 0, &PersistenceError{Op: "count chat turns", Err: err}
	}
	return count, nil
}

// --- Entitlements ---

// GetEntitlement returns the user's entitlement, creating a free-tier row
// with the configured starting credits on first access.
func (s *Store) GetEntitlement(userID string) (*model.Entitlement, error) {
	var e model.Entitlement
	err := s.db.First(&e, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e = model.Entitlement{
			UserID:    userID,
			PlanType:  model.PlanFree,
			Credits:   s.defaultCredits,
			UpdatedAt: time.Now(),
		}
		if err := s.db.Create(&e).Error; err != nil {
			return nil, &PersistenceError{Op: "create entitlement", Err: err}
		}
		return &e, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get entitlement", Err: err}
	}
	return &e, nil
}

func (s *Store) SetPlan(userID, plan string) error {
	if _, err := s.GetEntitlement(userID); err != nil {
		return err
	}
	err := s.db.Model(&model.Entitlement{}).Where("user_id = ?", userID).Updates(map[string]any{
		"plan_type":  plan,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return &PersistenceError{Op: "set plan", Err: err}
	}
	return nil
}

func (s *Store) SetStripeCustomer(userID, customerID string) error {
	if _, err := s.GetEntitlement(userID); err != nil {
		return err
	}
	err := s.db.Model(&model.Entitlement{}).Where("user_id = ?", userID).Updates(map[string]any{
		"stripe_customer_id": customerID,
		"updated_at":         time.Now(),
	}).Error
	if err != nil {
		return &PersistenceError{Op: "set stripe customer", Err: err}
	}
	return nil
}

// UserIDByStripeCustomer resolves a Stripe customer ID back to a user,
// or returns ErrNotFound.
func (s *Store) UserIDByStripeCustomer(customerID string) (string, error) {
	var e model.Entitlement
	err := s.db.First(&e, "stripe_customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &PersistenceError{Op: "lookup stripe customer", Err: err}
	}
	return e.UserID, nil
}

// DecrementCredits takes one credit from the user, flooring at zero.
// Decrementing an already-empty balance is a no-op.
func (s *Store) DecrementCredits(userID string) error {
	err := s.db.Model(&model.Entitlement{}).
		Where("user_id = ? AND credits > 0", userID).
		Updates(map[string]any{
			"credits":    gorm.Expr("credits - 1"),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return &PersistenceError{Op: "decrement credits", Err: err}
	}
	return nil
}

// --- Audit log ---

// AuditEvent records an audit entry. Best effort: failures are logged
// and never propagated to the caller.
func (s *Store) AuditEvent(userID, action, details string) {
	err := s.db.Create(&model.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}).Error
	if err != nil {
		slog.Error("failed to write audit log",
			"user_id", userID,
			"action", action,
			"error", err,
		)
	}
}
