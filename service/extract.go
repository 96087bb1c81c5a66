package service

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DocumentKind selects the extraction path for a stored file.
type DocumentKind int

const (
	KindUnsupported DocumentKind = iota
	KindTextDocument
	KindImage
	KindAudio
)

// ClassifyFile maps a lowercase file name suffix to its extraction path.
func ClassifyFile(name string) DocumentKind {
	name = strings.ToLower(name)
	switch {
	case hasAnySuffix(name, ".pdf", ".doc", ".docx"):
		return KindTextDocument
	case hasAnySuffix(name, ".jpg", ".jpeg", ".png"):
		return KindImage
	case hasAnySuffix(name, ".mp3", ".wav", ".webm", ".mp4"):
		return KindAudio
	default:
		return KindUnsupported
	}
}

func hasAnySuffix(name string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// AnalysisResult is the normalized output of the extraction pipeline.
type AnalysisResult struct {
	Summary    string
	AnalyzedAt time.Time
	SourceName string
	Status     string
	// ExtractedText is the raw text recovered from the file where the
	// path produces one (the audio transcript). Empty otherwise.
	ExtractedText string
}

// promptSpec parameterizes the shared analysis instruction template per
// document kind: the subject line and the five section labels.
type promptSpec struct {
	subject  string
	sections [5]string
	footer   string
}

func specForKind(kind DocumentKind, sourceName, transcript string) promptSpec {
	switch kind {
	case KindImage:
		return promptSpec{
			subject: "Analise esta imagem de documento jurídico e forneça:",
			sections: [5]string{
				"**Resumo Executivo**: Tipo de documento e principais características",
				"**Análise de Riscos**: Identifique cláusulas problemáticas ou arriscadas",
				"**Pontos de Atenção**: Aspectos que merecem revisão",
				"**Recomendações**: Sugestões de melhorias ou correções",
				"**Conformidade**: Verificação com a legislação brasileira",
			},
		}
	case KindAudio:
		return promptSpec{
			subject: "Analise a seguinte transcrição de áudio jurídico e forneça:",
			sections: [5]string{
				"**Resumo Executivo**: Tipo de conteúdo e principais pontos",
				"**Análise Jurídica**: Identifique questões legais mencionadas",
				"**Pontos de Atenção**: Aspectos que merecem revisão",
				"**Recomendações**: Sugestões baseadas no conteúdo",
				"**Próximos Passos**: Ações recomendadas",
			},
			footer: "Transcrição: " + transcript,
		}
	default:
		return promptSpec{
			subject: "Analise o seguinte contrato PDF e forneça:",
			sections: [5]string{
				"**Resumo Executivo**: Tipo de contrato e principais características",
				"**Análise de Riscos**: Identifique cláusulas problemáticas ou arriscadas",
				"**Pontos de Atenção**: Aspectos que merecem revisão",
				"**Recomendações**: Sugestões de melhorias ou correções",
				"**Conformidade**: Verificação com a legislação brasileira",
			},
			footer: "Contrato: " + sourceName,
		}
	}
}

// renderAnalysisPrompt builds the fixed legal-analysis instruction for a
// document kind.
func renderAnalysisPrompt(spec promptSpec) string {
	var b strings.Builder
	b.WriteString("Você é um especialista em direito brasileiro. ")
	b.WriteString(spec.subject)
	b.WriteString("\n\n")
	for i, section := range spec.sections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section)
	}
	if spec.footer != "" {
		b.WriteString("\n")
		b.WriteString(spec.footer)
		b.WriteString("\n")
	}
	b.WriteString("Forneça uma análise detalhada e estruturada em português brasileiro.")
	return b.String()
}

const transcribeInstruction = "Transcreva este áudio em português brasileiro:"

// ExtractionService runs a stored file through the type-appropriate AI
// analysis path and normalizes the result.
type ExtractionService struct {
	ai AIClient
}

func NewExtractionService(ai AIClient) *ExtractionService {
	return &ExtractionService{ai: ai}
}

// Analyze dispatches by file suffix to the text, vision or
// transcription path. Bytes are already bounded by the upload validator.
func (s *ExtractionService) Analyze(ctx context.Context, fileName string, data []byte) (*AnalysisResult, error) {
	kind := ClassifyFile(fileName)

	var summary, extracted string
	var err error

	switch kind {
	case KindTextDocument:
		summary, err = s.ai.Complete(ctx, renderAnalysisPrompt(specForKind(kind, fileName, "")), 0.3)

	case KindImage:
		summary, err = s.ai.CompleteWithImage(ctx,
			renderAnalysisPrompt(specForKind(kind, fileName, "")),
			imageMimeType(fileName), data)

	case KindAudio:
		extracted, err = s.ai.Transcribe(ctx, fileName, data)
		if err == nil {
			summary, err = s.ai.Complete(ctx, renderAnalysisPrompt(specForKind(kind, fileName, extracted)), 0.3)
		}

	default:
		return nil, &ValidationError{Reason: "Tipo de arquivo não suportado. Use PDF, imagens ou áudio."}
	}

	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Summary:       summary,
		AnalyzedAt:    time.Now(),
		SourceName:    fileName,
		Status:        "completed",
		ExtractedText: extracted,
	}, nil
}

func imageMimeType(fileName string) string {
	if strings.HasSuffix(strings.ToLower(fileName), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
