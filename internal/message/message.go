// Package message defines the request and response bodies exchanged with the
// browser client.
package message

import "strings"

// TranslationRequest is the body of POST /translate.
type TranslationRequest struct {
	// Text is the English input. Required, non-blank after trimming.
	Text string `json:"text" example:"Hello"`
}

// TranslationResult is the successful response of POST /translate.
type TranslationResult struct {
	// English is the trimmed input text.
	English string `json:"english" example:"Hello"`

	// Kannada is the provider's translation. Never empty and never equal to English.
	Kannada string `json:"kannada" example:"ನಮಸ್ಕಾರ"`
}

// SpeechRequest is the body of POST /speak and POST /speak-stream.
type SpeechRequest struct {
	// Text is the text to synthesize. Required, non-blank after trimming.
	Text string `json:"text" example:"ನಮಸ್ಕಾರ"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error" example:"Please enter text"`
}

// Trimmed returns the request text with surrounding whitespace removed.
func (r TranslationRequest) Trimmed() string { return strings.TrimSpace(r.Text) }

// Trimmed returns the request text with surrounding whitespace removed.
func (r SpeechRequest) Trimmed() string { return strings.TrimSpace(r.Text) }
