package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/CaioZinDaLua/secure-contract-ai-review/config"
)

// AIClient is the boundary to the AI vendor. Implementations return the
// assistant text or a typed failure, never partial output.
type AIClient interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
	CompleteWithImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
	Transcribe(ctx context.Context, fileName string, data []byte) (string, error)
}

// OpenAIService implements AIClient with the OpenAI API.
type OpenAIService struct {
	client *openai.Client
	model  string
}

func NewOpenAIService(cfg *config.OpenAIConfig) *OpenAIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	return &OpenAIService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.ChatModel,
	}
}

// Complete submits a single-prompt chat completion and returns the reply text.
func (s *OpenAIService) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", upstreamError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Op: "chat completion", Detail: "empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteWithImage submits a prompt plus an inline image to the
// multimodal endpoint.
func (s *OpenAIService) CompleteWithImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", upstreamError("image analysis", err)
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Op: "image analysis", Detail: "empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts an audio file to text via the speech-to-text endpoint.
func (s *OpenAIService) Transcribe(ctx context.Context, fileName string, data []byte) (string, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: fileName,
		Reader:   bytes.NewReader(data),
	})
	if err != nil {
		return "", upstreamError("transcription", err)
	}
	return resp.Text, nil
}

// upstreamError converts a vendor SDK error into an UpstreamError
// carrying the HTTP status where one is available.
func upstreamError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Op: op, Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Op: op, Detail: "request timed out"}
	}
	return &UpstreamError{Op: op, Detail: err.Error()}
}
