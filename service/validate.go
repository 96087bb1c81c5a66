package service

import (
	"regexp"
	"strings"
)

// UploadFile describes a candidate upload before it reaches storage.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
}

// MaxUploadSize is the largest accepted file (10 MiB).
const MaxUploadSize = 10 * 1024 * 1024

var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/webm": true,
	"audio/mp4":  true,
}

var allowedExtensions = []string{
	".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png", ".mp3", ".wav", ".webm", ".mp4",
}

// Patterns that indicate an injection attempt in a file name
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+=`),
	regexp.MustCompile(`\.\.`),
	regexp.MustCompile(`[<>]`),
}

// ValidateUpload checks a candidate file against the upload rules in a
// fixed order, so the first failing rule determines the reported reason.
// It returns an empty string when the file is accepted. Pure check: the
// caller surfaces the reason and aborts the upload.
func ValidateUpload(f *UploadFile) string {
	if f == nil {
		panic("ValidateUpload: nil file")
	}

	if f.Size > MaxUploadSize {
		return "Arquivo muito grande. Máximo permitido: 10MB"
	}
	if f.Size <= 0 {
		return "Arquivo está vazio"
	}

	if !allowedContentTypes[f.ContentType] {
		return "Tipo de arquivo não permitido. Use PDF, Word, imagens (JPG/PNG) ou áudio (MP3/WAV)"
	}

	name := strings.ToLower(f.Name)
	hasValidExt := false
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(name, ext) {
			hasValidExt = true
			break
		}
	}
	if !hasValidExt {
		return "Extensão de arquivo não permitida"
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(f.Name) {
			return "Nome do arquivo contém caracteres não permitidos"
		}
	}

	if len(f.Name) > 255 {
		return "Nome do arquivo muito longo (máximo 255 caracteres)"
	}

	return ""
}
