package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CaioZinDaLua/secure-contract-ai-review/config"
	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
	"github.com/CaioZinDaLua/secure-contract-ai-review/pkg/logger"
)

// ChatService coordinates one chat turn: authorization, context
// assembly, prompting, directive parsing and persistence.
type ChatService struct {
	store      *Store
	ai         AIClient
	assembler  *ContextAssembler
	limiter    *UsageLimiter
	chatLimit  int
	chatWindow time.Duration
}

func NewChatService(store *Store, ai AIClient, limiter *UsageLimiter, limits *config.LimitsConfig) *ChatService {
	return &ChatService{
		store:      store,
		ai:         ai,
		assembler:  NewContextAssembler(store),
		limiter:    limiter,
		chatLimit:  limits.ChatPerWindow,
		chatWindow: time.Duration(limits.ChatWindowSecs) * time.Second,
	}
}

// ChatRequest is one inbound chat message. DocumentID is empty for
// general chat that is not tied to a document.
type ChatRequest struct {
	DocumentID string
	UserID     string
	Message    string
}

// ChatResponse carries the user-visible assistant message. NewVersion is
// the version number written when a correction was applied, 0 otherwise.
type ChatResponse struct {
	Message    string
	NewVersion int
}

const chatPromptTemplate = `Você é "Contrato Seguro", um assistente jurídico virtual especialista em legislação brasileira. Sua tarefa é responder perguntas e, quando solicitado explicitamente, fazer correções no contrato de um usuário.

CONTEXTO FORNECIDO:
1.  **Análise Inicial do Contrato:**
    %s

2.  **Histórico da Conversa (últimas %d trocas):**
    %s

3.  **Versão Mais Recente do Contrato (Texto Completo):**
    ---
    %s
    ---

TAREFA ATUAL:
O usuário disse: "%s"

INSTRUÇÕES:
- Baseie TODAS as suas respostas no contexto fornecido.
- Se o usuário fizer uma pergunta, responda de forma clara e objetiva.
- **SE E SOMENTE SE** o usuário usar frases como "corrija o contrato", "altere a cláusula", "modifique o texto" ou "faça a correção", você deve:
    1.  Confirmar a alteração na sua resposta.
    2.  No final da sua resposta, incluir o texto COMPLETO e ATUALIZADO do contrato dentro de um bloco delimitado por "[[[START_CONTRACT]]]" e "[[[END_CONTRACT]]]". É crucial que o contrato inteiro seja retornado, não apenas a parte alterada.
- Se não for um pedido de correção, apenas responda à pergunta sem incluir o bloco de contrato.
`

func renderChatPrompt(bundle *ChatContext, userMessage string) string {
	analysis := bundle.AnalysisSummary
	if analysis == "" {
		analysis = "{}"
	}
	return fmt.Sprintf(chatPromptTemplate,
		analysis, HistoryWindow, bundle.History, bundle.LatestVersionText, userMessage)
}

// HandleTurn runs one chat exchange. Document-targeted chat requires a
// pro plan and may apply a correction directive; general chat is open to
// all tiers and never writes a document version. Early failures leave no
// partial writes.
func (s *ChatService) HandleTurn(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.Message == "" {
		return nil, &ValidationError{Reason: "Mensagem é obrigatória"}
	}

	// Authorizing
	ent, err := s.store.GetEntitlement(req.UserID)
	if err != nil {
		return nil, err
	}
	if req.DocumentID != "" && ent.PlanType != model.PlanPro {
		return nil, &AccessError{Reason: "Acesso negado. Esta funcionalidade é exclusiva para assinantes PRO."}
	}
	if !s.limiter.TryConsume(req.UserID, "chat", s.chatLimit, s.chatWindow) {
		return nil, ErrRateLimited
	}

	// ContextBuilding
	bundle := &ChatContext{History: "Nenhum histórico."}
	if req.DocumentID != "" {
		bundle, err = s.assembler.Assemble(req.DocumentID, req.UserID)
		if err != nil {
			return nil, err
		}
	}

	// Prompting: a failed or timed-out call is fatal for this request,
	// never retried here, and writes nothing.
	reply, err := s.ai.Complete(ctx, renderChatPrompt(bundle, req.Message), 0.5)
	if err != nil {
		return nil, err
	}

	// DirectiveParsing
	directive := ParseDirective(reply)

	// Persisting: the version append happens before the chat-turn write
	// so a correction is never reported without being durable.
	newVersion := 0
	if req.DocumentID != "" && directive.HasCorrection {
		newVersion, err = s.store.AppendVersion(req.DocumentID, directive.NewContractText)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "contract correction applied",
			"document_id", req.DocumentID,
			"version", newVersion,
		)
	}

	if err := s.store.AppendChatTurn(&model.ChatTurn{
		DocumentID:  req.DocumentID,
		UserMessage: req.Message,
		AIResponse:  directive.DisplayMessage,
		UserID:      req.UserID,
	}); err != nil {
		return nil, err
	}

	return &ChatResponse{
		Message:    directive.DisplayMessage,
		NewVersion: newVersion,
	}, nil
}
