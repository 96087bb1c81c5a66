package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/CaioZinDaLua/secure-contract-ai-review/middleware"
	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
	"github.com/CaioZinDaLua/secure-contract-ai-review/pkg/logger"
	"github.com/CaioZinDaLua/secure-contract-ai-review/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	minioService *service.MinioService
	analysisSvc  *service.AnalysisService
	store        *service.Store
}

func NewDocumentHandler(minioSvc *service.MinioService, analysisSvc *service.AnalysisService, store *service.Store) *DocumentHandler {
	return &DocumentHandler{
		minioService: minioSvc,
		analysisSvc:  analysisSvc,
		store:        store,
	}
}

var extensionContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".mp4":  "audio/mp4",
}

// Upload handles contract file upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := middleware.GetUserID(c)

	// Get file from form
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		contentType = extensionContentTypes[ext]
	}

	// Reject unsafe or malformed uploads before anything is stored
	if reason := service.ValidateUpload(&service.UploadFile{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}); reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	// Generate unique ID and object name
	documentID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", userID, documentID, header.Filename)

	// Upload to MINIO
	err = h.minioService.UploadFile(c.Request.Context(), objectName, file, header.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file: " + err.Error()})
		return
	}

	// Create document record
	doc := &model.Document{
		ID:         documentID,
		FileName:   header.Filename,
		ObjectName: objectName,
		Status:     model.StatusPending,
		UserID:     userID,
	}
	if err := h.store.CreateDocument(doc); err != nil {
		respondError(c, err)
		return
	}

	// Run extraction in the background
	go func() {
		if err := h.analysisSvc.Run(context.Background(), documentID); err != nil {
			logger.Error(context.Background(), "background analysis failed",
				"document_id", documentID,
				"error", err,
			)
		}
	}()

	c.JSON(http.StatusOK, gin.H{
		"id":        documentID,
		"file_name": header.Filename,
		"status":    model.StatusPending,
	})
}

// Analyze re-runs the extraction pipeline for a document
func (h *DocumentHandler) Analyze(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	doc, err := h.store.GetDocument(id)
	if err != nil || doc.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	if err := h.analysisSvc.Run(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Análise concluída com sucesso",
		"document_id": id,
	})
}

// List returns all documents for the current user
func (h *DocumentHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	docs, err := h.store.ListDocuments(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, len(docs))
	for i, doc := range docs {
		result[i] = gin.H{
			"id":         doc.ID,
			"file_name":  doc.FileName,
			"status":     doc.Status,
			"created_at": doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at": doc.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": result})
}

// Get returns a single document with its analysis
func (h *DocumentHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	doc, err := h.store.GetDocument(id)
	if err != nil || doc.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	analysis, err := h.store.GetAnalysis(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"analysis": analysis,
	})
}

// GetStatus returns the processing status of a document
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	doc, err := h.store.GetDocument(id)
	if err != nil || doc.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        doc.ID,
		"status":    doc.Status,
		"error_msg": doc.ErrorMsg,
	})
}

// GetDownloadURL returns a time-limited link to the original file
func (h *DocumentHandler) GetDownloadURL(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	doc, err := h.store.GetDocument(id)
	if err != nil || doc.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	url, err := h.minioService.GetPresignedURL(c.Request.Context(), doc.ObjectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Delete removes a document, its stored file and derived records
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	doc, err := h.store.GetDocument(id)
	if err != nil || doc.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	// The stored file goes first; a leftover object is preferable to a
	// dangling database record pointing at nothing.
	if err := h.minioService.DeleteFile(c.Request.Context(), doc.ObjectName); err != nil {
		logger.Error(c.Request.Context(), "failed to delete stored file",
			"document_id", id,
			"object_name", doc.ObjectName,
			"error", err,
		)
	}

	if err := h.store.DeleteDocument(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListVersions returns the full version history of a document
func (h *DocumentHandler) ListVersions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id := c.Param("id")

	doc, err := h.store.GetDocument(id)
	if err != nil || doc.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato não encontrado"})
		return
	}

	versions, err := h.store.ListVersions(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": versions})
}
