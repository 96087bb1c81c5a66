package service

import (
	"regexp"
	"strings"
)

// Delimiters the assistant uses to signal a full-document replacement.
const (
	ContractStartMarker = "[[[START_CONTRACT]]]"
	ContractEndMarker   = "[[[END_CONTRACT]]]"
)

var contractBlockRegex = regexp.MustCompile(`\[\[\[START_CONTRACT\]\]\]([\s\S]*?)\[\[\[END_CONTRACT\]\]\]`)

// Directive is the result of scanning an assistant reply for a
// correction block.
type Directive struct {
	// DisplayMessage is the reply with the delimited block removed.
	// When no block is present it equals the input unchanged.
	DisplayMessage string
	// NewContractText is the trimmed inner text of the block, or empty
	// when no well-formed block was found.
	NewContractText string
	// HasCorrection reports whether a well-formed block was found.
	HasCorrection bool
}

// ParseDirective scans raw assistant text for a correction block. Only
// the first well-formed block is honored; a start marker with no
// matching end marker is treated as absent and the text is left
// untouched rather than truncated.
func ParseDirective(raw string) Directive {
	match := contractBlockRegex.FindStringSubmatch(raw)
	if match == nil {
		return Directive{DisplayMessage: raw}
	}

	display := strings.TrimSpace(strings.Replace(raw, match[0], "", 1))
	body := strings.TrimSpace(match[1])
	return Directive{
		DisplayMessage:  display,
		NewContractText: body,
		HasCorrection:   body != "",
	}
}
