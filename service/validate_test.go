package service

import (
	"strings"
	"testing"
)

func TestValidateUploadAccepted(t *testing.T) {
	tests := []struct {
		name string
		file *UploadFile
	}{
		{"pdf", &UploadFile{Name: "contrato.pdf", ContentType: "application/pdf", Size: 1024}},
		{"docx", &UploadFile{Name: "contrato.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Size: 2048}},
		{"jpeg", &UploadFile{Name: "foto.jpg", ContentType: "image/jpeg", Size: 512}},
		{"png", &UploadFile{Name: "scan.PNG", ContentType: "image/png", Size: 512}},
		{"mp3", &UploadFile{Name: "gravacao.mp3", ContentType: "audio/mpeg", Size: 4096}},
		{"max size", &UploadFile{Name: "big.pdf", ContentType: "application/pdf", Size: MaxUploadSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if reason := ValidateUpload(tt.file); reason != "" {
				t.Errorf("Expected acceptance, got rejection: %s", reason)
			}
		})
	}
}

func TestValidateUploadRejections(t *testing.T) {
	tests := []struct {
		name   string
		file   *UploadFile
		reason string
	}{
		{
			"oversized",
			&UploadFile{Name: "big.pdf", ContentType: "application/pdf", Size: MaxUploadSize + 1},
			"Arquivo muito grande. Máximo permitido: 10MB",
		},
		{
			"empty file with valid name and type",
			&UploadFile{Name: "contrato.pdf", ContentType: "application/pdf", Size: 0},
			"Arquivo está vazio",
		},
		{
			"disallowed content type",
			&UploadFile{Name: "script.pdf", ContentType: "application/x-sh", Size: 100},
			"Tipo de arquivo não permitido. Use PDF, Word, imagens (JPG/PNG) ou áudio (MP3/WAV)",
		},
		{
			"disallowed extension",
			&UploadFile{Name: "contrato.exe", ContentType: "application/pdf", Size: 100},
			"Extensão de arquivo não permitida",
		},
		{
			"path traversal",
			&UploadFile{Name: "../../evil.pdf", ContentType: "application/pdf", Size: 100},
			"Nome do arquivo contém caracteres não permitidos",
		},
		{
			"script tag",
			&UploadFile{Name: "<script>alert(1)</script>.pdf", ContentType: "application/pdf", Size: 100},
			"Nome do arquivo contém caracteres não permitidos",
		},
		{
			"javascript scheme",
			&UploadFile{Name: "javascript:run.pdf", ContentType: "application/pdf", Size: 100},
			"Nome do arquivo contém caracteres não permitidos",
		},
		{
			"event handler",
			&UploadFile{Name: "onload=x.pdf", ContentType: "application/pdf", Size: 100},
			"Nome do arquivo contém caracteres não permitidos",
		},
		{
			"name too long",
			&UploadFile{Name: strings.Repeat("a", 252) + ".pdf", ContentType: "application/pdf", Size: 100},
			"Nome do arquivo muito longo (máximo 255 caracteres)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := ValidateUpload(tt.file)
			if reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, reason)
			}
		})
	}
}

func TestValidateUploadFirstRuleWins(t *testing.T) {
	// Oversized AND traversal: size rule is evaluated first
	file := &UploadFile{Name: "../../evil.pdf", ContentType: "application/pdf", Size: MaxUploadSize + 1}

	if reason := ValidateUpload(file); reason != "Arquivo muito grande. Máximo permitido: 10MB" {
		t.Errorf("Expected size rejection to win, got %q", reason)
	}
}

func TestValidateUploadNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil file")
		}
	}()
	ValidateUpload(nil)
}
