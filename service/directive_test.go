package service

import (
	"strings"
	"testing"
)

func TestParseDirectiveRoundTrip(t *testing.T) {
	d := ParseDirective("Hello [[[START_CONTRACT]]]NEW BODY[[[END_CONTRACT]]]")

	if !d.HasCorrection {
		t.Fatal("Expected a correction to be detected")
	}
	if d.NewContractText != "NEW BODY" {
		t.Errorf("Expected body 'NEW BODY', got '%s'", d.NewContractText)
	}
	if d.DisplayMessage != "Hello" {
		t.Errorf("Expected display 'Hello', got '%s'", d.DisplayMessage)
	}
}

func TestParseDirectiveNoBlock(t *testing.T) {
	inputs := []string{
		"A cláusula 5 trata da multa por rescisão.",
		"",
		"Texto com [[[END_CONTRACT]]] solto",
	}

	for _, input := range inputs {
		d := ParseDirective(input)
		if d.HasCorrection {
			t.Errorf("Input %q: expected no correction", input)
		}
		if d.DisplayMessage != input {
			t.Errorf("Input %q: expected display unchanged, got %q", input, d.DisplayMessage)
		}
	}
}

func TestParseDirectiveMalformedBlock(t *testing.T) {
	input := "Segue a correção: [[[START_CONTRACT]]]texto sem fechamento"

	d := ParseDirective(input)
	if d.HasCorrection {
		t.Error("Expected no correction for unterminated block")
	}
	if d.DisplayMessage != input {
		t.Errorf("Expected display unchanged, got %q", d.DisplayMessage)
	}
}

func TestParseDirectiveFirstMatchWins(t *testing.T) {
	input := "A [[[START_CONTRACT]]]primeiro[[[END_CONTRACT]]] B [[[START_CONTRACT]]]segundo[[[END_CONTRACT]]]"

	d := ParseDirective(input)
	if !d.HasCorrection {
		t.Fatal("Expected a correction")
	}
	if d.NewContractText != "primeiro" {
		t.Errorf("Expected first block honored, got %q", d.NewContractText)
	}
	if !strings.Contains(d.DisplayMessage, "segundo") {
		t.Errorf("Expected second block left in display message, got %q", d.DisplayMessage)
	}
}

func TestParseDirectiveTrimsBody(t *testing.T) {
	d := ParseDirective("Pronto. [[[START_CONTRACT]]]\n\n  CONTRATO ATUALIZADO  \n[[[END_CONTRACT]]]")

	if d.NewContractText != "CONTRATO ATUALIZADO" {
		t.Errorf("Expected trimmed body, got %q", d.NewContractText)
	}
	if d.DisplayMessage != "Pronto." {
		t.Errorf("Expected 'Pronto.', got %q", d.DisplayMessage)
	}
}

func TestParseDirectiveMultilineBody(t *testing.T) {
	body := "CLÁUSULA 1\nlinha dois\n\nCLÁUSULA 2"
	d := ParseDirective("Confirmado.\n[[[START_CONTRACT]]]" + body + "[[[END_CONTRACT]]]")

	if d.NewContractText != body {
		t.Errorf("Expected multiline body preserved, got %q", d.NewContractText)
	}
	if strings.Contains(d.DisplayMessage, ContractStartMarker) || strings.Contains(d.DisplayMessage, ContractEndMarker) {
		t.Error("Delimiters must never appear in the display message")
	}
}

func TestParseDirectiveWhitespaceOnlyBody(t *testing.T) {
	d := ParseDirective("Ok [[[START_CONTRACT]]]   [[[END_CONTRACT]]]")

	if d.HasCorrection {
		t.Error("Whitespace-only body should not count as a correction")
	}
	if d.DisplayMessage != "Ok" {
		t.Errorf("Expected block stripped from display, got %q", d.DisplayMessage)
	}
}
