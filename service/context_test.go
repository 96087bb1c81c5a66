package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
)

func TestAssembleEmptySources(t *testing.T) {
	store := newTestStore(t)
	createTestDocument(t, store, "doc-1", "user-1")

	assembler := NewContextAssembler(store)
	ctx, err := assembler.Assemble("doc-1", "user-1")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if ctx.AnalysisSummary != "" {
		t.Errorf("Expected empty analysis, got %q", ctx.AnalysisSummary)
	}
	if ctx.LatestVersionText != "" || ctx.LatestVersionNumber != 0 {
		t.Errorf("Expected no version, got %d / %q", ctx.LatestVersionNumber, ctx.LatestVersionText)
	}
	if ctx.History != "Nenhum histórico." {
		t.Errorf("Expected empty-history placeholder, got %q", ctx.History)
	}
}

func TestAssembleFullBundle(t *testing.T) {
	store := newTestStore(t)
	createTestDocument(t, store, "doc-1", "user-1")

	store.SaveAnalysis(&model.Analysis{DocumentID: "doc-1", Summary: "riscos identificados", Status: "completed"})
	store.AppendVersion("doc-1", "versão antiga")
	store.AppendVersion("doc-1", "versão atual")
	store.AppendChatTurn(&model.ChatTurn{DocumentID: "doc-1", UserID: "user-1", UserMessage: "remova a multa", AIResponse: "feito"})

	assembler := NewContextAssembler(store)
	ctx, err := assembler.Assemble("doc-1", "user-1")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if ctx.AnalysisSummary != "riscos identificados" {
		t.Errorf("Unexpected analysis: %q", ctx.AnalysisSummary)
	}
	if ctx.LatestVersionNumber != 2 || ctx.LatestVersionText != "versão atual" {
		t.Errorf("Expected latest version 2, got %d / %q", ctx.LatestVersionNumber, ctx.LatestVersionText)
	}
	if !strings.Contains(ctx.History, "Usuário: remova a multa") || !strings.Contains(ctx.History, "IA: feito") {
		t.Errorf("History missing turn: %q", ctx.History)
	}
}

func TestAssembleHistoryWindow(t *testing.T) {
	store := newTestStore(t)
	createTestDocument(t, store, "doc-1", "user-1")

	for _, msg := range []string{"um", "dois", "três", "quatro", "cinco", "seis", "sete"} {
		store.AppendChatTurn(&model.ChatTurn{DocumentID: "doc-1", UserID: "user-1", UserMessage: msg, AIResponse: "ok"})
	}

	assembler := NewContextAssembler(store)
	ctx, err := assembler.Assemble("doc-1", "user-1")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if strings.Contains(ctx.History, "Usuário: um") || strings.Contains(ctx.History, "Usuário: dois") {
		t.Errorf("History should only include the last %d turns: %q", HistoryWindow, ctx.History)
	}
	if !strings.Contains(ctx.History, "Usuário: três") || !strings.Contains(ctx.History, "Usuário: sete") {
		t.Errorf("History missing windowed turns: %q", ctx.History)
	}
	// Oldest first within the window
	if strings.Index(ctx.History, "três") > strings.Index(ctx.History, "sete") {
		t.Error("History must be in chronological order")
	}
}

func TestAssembleOwnership(t *testing.T) {
	store := newTestStore(t)
	createTestDocument(t, store, "doc-1", "user-1")

	assembler := NewContextAssembler(store)

	var accessErr *AccessError
	if _, err := assembler.Assemble("doc-1", "user-2"); !errors.As(err, &accessErr) {
		t.Errorf("Expected AccessError for foreign document, got %v", err)
	}

	if _, err := assembler.Assemble("missing", "user-1"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing document, got %v", err)
	}
}
