package model

import (
	"testing"
	"time"
)

func TestDocumentStruct(t *testing.T) {
	doc := &Document{
		ID:         "test-id",
		FileName:   "contrato.pdf",
		ObjectName: "user-1/test-id/contrato.pdf",
		Status:     StatusPending,
		UserID:     "user-1",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if doc.ID != "test-id" {
		t.Errorf("Expected ID 'test-id', got '%s'", doc.ID)
	}
	if doc.Status != StatusPending {
		t.Errorf("Expected status '%s', got '%s'", StatusPending, doc.Status)
	}
}

func TestDocumentStatusConstants(t *testing.T) {
	statuses := []string{StatusPending, StatusProcessing, StatusSuccess, StatusError}
	expected := []string{"pending", "processing", "success", "error"}

	for i, status := range statuses {
		if status != expected[i] {
			t.Errorf("Expected '%s', got '%s'", expected[i], status)
		}
	}
}

func TestPlanConstants(t *testing.T) {
	if PlanFree != "free" {
		t.Errorf("Expected 'free', got '%s'", PlanFree)
	}
	if PlanPro != "pro" {
		t.Errorf("Expected 'pro', got '%s'", PlanPro)
	}
}
