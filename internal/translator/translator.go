// Package translator turns English input into a Kannada TranslationResult.
//
// The provider call is best effort: any provider failure falls back to the
// original text, and the Service then reports "translation unavailable"
// whenever the text came back unchanged.
package translator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/nadzzz/kannadavoice/internal/apperr"
	"github.com/nadzzz/kannadavoice/internal/message"
)

// Client-facing messages.
const (
	MsgEmptyText   = "Please enter text"
	MsgUnavailable = "Translation service temporarily unavailable. Please try again."
)

// Provider is an external translation API for a fixed language pair.
type Provider interface {
	// Name returns the provider identifier (e.g., "mymemory").
	Name() string

	// Translate returns the provider's translation of text. An empty string
	// with a nil error means the provider answered without a translation.
	Translate(ctx context.Context, text string) (string, error)
}

// Service applies the fallback policy around a Provider.
type Service struct {
	provider Provider
}

// New creates a Service backed by provider.
func New(provider Provider) *Service {
	return &Service{provider: provider}
}

// Translate validates text, asks the provider for a translation and enforces
// that the result is non-empty and differs from the input.
func (s *Service) Translate(ctx context.Context, req message.TranslationRequest) (*message.TranslationResult, error) {
	english := req.Trimmed()
	if english == "" {
		return nil, apperr.NewValidation(MsgEmptyText)
	}
	english = norm.NFC.String(english)

	kannada := s.translateOrFallback(ctx, english)
	if kannada == "" || kannada == english {
		return nil, apperr.NewUnavailable(MsgUnavailable)
	}

	return &message.TranslationResult{
		English: english,
		Kannada: kannada,
	}, nil
}

// translateOrFallback never fails: provider errors and empty translations
// yield the original text.
func (s *Service) translateOrFallback(ctx context.Context, text string) string {
	start := time.Now()
	logger := slog.With("provider", s.provider.Name(), "text_length", len(text))

	translated, err := s.provider.Translate(ctx, text)
	if err != nil {
		logger.Warn("translation provider failed, falling back to input", "error", err, "duration", time.Since(start))
		return text
	}
	if translated == "" {
		logger.Warn("translation provider returned empty text, falling back to input", "duration", time.Since(start))
		return text
	}

	translated = norm.NFC.String(translated)
	if translated == text {
		logger.Info("translation provider echoed input", "duration", time.Since(start))
	} else {
		logger.Debug("translation complete", "duration", time.Since(start))
	}
	return translated
}
