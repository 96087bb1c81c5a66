package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CaioZinDaLua/secure-contract-ai-review/config"
	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
	"github.com/CaioZinDaLua/secure-contract-ai-review/service"
	"github.com/gin-gonic/gin"
)

type scriptedAI struct {
	reply string
}

func (s *scriptedAI) Complete(context.Context, string, float32) (string, error) {
	return s.reply, nil
}

func (s *scriptedAI) CompleteWithImage(context.Context, string, string, []byte) (string, error) {
	return s.reply, nil
}

func (s *scriptedAI) Transcribe(context.Context, string, []byte) (string, error) {
	return "", nil
}

func newChatHandler(t *testing.T, ai service.AIClient) (*service.Store, *ChatHandler) {
	t.Helper()

	store := newHandlerStore(t)
	svc := service.NewChatService(store, ai, service.NewUsageLimiter(), &config.LimitsConfig{
		DefaultCredits:     5,
		AnalysisPerWindow:  5,
		AnalysisWindowSecs: 300,
		ChatPerWindow:      10,
		ChatWindowSecs:     60,
	})
	return store, NewChatHandler(svc)
}

func postChat(router *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/chat", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatHandlerCorrection(t *testing.T) {
	ai := &scriptedAI{reply: "Feito.\n[[[START_CONTRACT]]]NOVO TEXTO[[[END_CONTRACT]]]"}
	store, handler := newChatHandler(t, ai)

	seedDocument(t, store, "doc-1", "user-1")
	store.SetPlan("user-1", model.PlanPro)

	router := gin.New()
	router.POST("/chat", asUser("user-1", handler.Chat))

	w := postChat(router, map[string]string{"document_id": "doc-1", "message": "corrija o contrato"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.AIResponse != "Feito." {
		t.Errorf("Unexpected response text: %q", response.AIResponse)
	}
	if response.NewVersion != 1 {
		t.Errorf("Expected new_version 1, got %d", response.NewVersion)
	}
}

func TestChatHandlerMissingMessage(t *testing.T) {
	_, handler := newChatHandler(t, &scriptedAI{reply: "ok"})

	router := gin.New()
	router.POST("/chat", asUser("user-1", handler.Chat))

	w := postChat(router, map[string]string{"document_id": "doc-1"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandlerProGate(t *testing.T) {
	store, handler := newChatHandler(t, &scriptedAI{reply: "ok"})
	seedDocument(t, store, "doc-1", "user-1")

	router := gin.New()
	router.POST("/chat", asUser("user-1", handler.Chat))

	w := postChat(router, map[string]string{"document_id": "doc-1", "message": "corrija"})

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for free tier, got %d", w.Code)
	}
}

func TestChatHandlerGeneralChat(t *testing.T) {
	_, handler := newChatHandler(t, &scriptedAI{reply: "Posso ajudar."})

	router := gin.New()
	router.POST("/chat", asUser("user-1", handler.Chat))

	w := postChat(router, map[string]string{"message": "olá"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]any
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["ai_response"] != "Posso ajudar." {
		t.Errorf("Unexpected response: %v", response)
	}
	// new_version is omitted when no correction was applied
	if _, ok := response["new_version"]; ok {
		t.Error("new_version must be omitted for plain replies")
	}
}

func TestChatHandlerUnknownDocument(t *testing.T) {
	store, handler := newChatHandler(t, &scriptedAI{reply: "ok"})
	store.SetPlan("user-1", model.PlanPro)

	router := gin.New()
	router.POST("/chat", asUser("user-1", handler.Chat))

	w := postChat(router, map[string]string{"document_id": "missing", "message": "corrija"})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
