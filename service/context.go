package service

import (
	"strings"

	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
)

// HistoryWindow is how many recent chat turns are replayed into a prompt.
const HistoryWindow = 5

// ChatContext bundles everything the correction prompt needs about a
// document. Empty fields are valid: the chat still works, degraded,
// before extraction has completed.
type ChatContext struct {
	AnalysisSummary     string
	LatestVersionText   string
	LatestVersionNumber int
	History             string
}

// ContextAssembler gathers the stored analysis, the latest document
// version and a bounded window of recent chat turns.
type ContextAssembler struct {
	store *Store
}

func NewContextAssembler(store *Store) *ContextAssembler {
	return &ContextAssembler{store: store}
}

// Assemble builds the context bundle for a document owned by userID.
// It fails only when the document cannot be resolved to the caller.
func (a *ContextAssembler) Assemble(documentID, userID string) (*ChatContext, error) {
	doc, err := a.store.GetDocument(documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, &AccessError{Reason: "Contrato não encontrado ou acesso negado"}
	}

	bundle := &ChatContext{}

	analysis, err := a.store.GetAnalysis(documentID)
	if err != nil {
		return nil, err
	}
	if analysis != nil {
		bundle.AnalysisSummary = analysis.Summary
	}

	version, err := a.store.LatestVersion(documentID)
	if err != nil {
		return nil, err
	}
	if version != nil {
		bundle.LatestVersionText = version.ContentText
		bundle.LatestVersionNumber = version.VersionNumber
	}

	turns, err := a.store.RecentChatTurns(documentID, HistoryWindow)
	if err != nil {
		return nil, err
	}
	bundle.History = renderHistory(turns)

	return bundle, nil
}

func renderHistory(turns []model.ChatTurn) string {
	if len(turns) == 0 {
		return "Nenhum histórico."
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, "Usuário: "+t.UserMessage+"\nIA: "+t.AIResponse)
	}
	return strings.Join(lines, "\n")
}
