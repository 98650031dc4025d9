// Package tts defines the speech engine contract used by the speech handlers.
//
// An Engine is constructed per request, configured with a rate and a voice,
// used to render one text into one file, and then discarded. Nothing about an
// engine is shared between requests.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Voice describes one installed voice.
type Voice struct {
	// ID is what the engine accepts to select the voice.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Languages lists the language codes the voice speaks (e.g., "kn", "en-us").
	Languages []string
}

// Engine renders text to an audio file.
type Engine interface {
	// Name returns the backend identifier (e.g., "espeak", "piper").
	Name() string

	// Voices enumerates installed voices.
	Voices(ctx context.Context) ([]Voice, error)

	// SetRate sets the speech rate in words per minute.
	SetRate(wpm int)

	// SetVoice selects a voice by ID. An empty ID means the engine default.
	SetVoice(id string)

	// SaveToFile synthesizes text as WAV into path, blocking until done.
	SaveToFile(ctx context.Context, text, path string) error
}

// Factory constructs a fresh, unconfigured Engine.
type Factory func(ctx context.Context) (Engine, error)

// EngineConfig is the configuration applied to every new engine.
type EngineConfig struct {
	// Rate is the speech rate in words per minute.
	Rate int

	// Language is the BCP 47 code of the language to prefer a voice for.
	Language string
}

// DefaultEngineConfig returns the configuration for Kannada speech at 150 wpm.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Rate: 150, Language: "kn"}
}

// MatchTerms returns the lower-cased strings a voice name is matched
// against: the language's English name and its short code.
func (c EngineConfig) MatchTerms() []string {
	code := strings.ToLower(c.Language)
	tag, err := language.Parse(c.Language)
	if err != nil {
		return []string{code}
	}
	base, _ := tag.Base()
	terms := []string{base.String()}
	if name := display.Languages(language.English).Name(tag); name != "" {
		terms = append([]string{strings.ToLower(name)}, terms...)
	}
	return terms
}

// SelectVoice returns the first voice whose name contains one of the match
// terms, case-insensitively.
func SelectVoice(voices []Voice, cfg EngineConfig) (Voice, bool) {
	terms := cfg.MatchTerms()
	for _, v := range voices {
		name := strings.ToLower(v.Name)
		for _, term := range terms {
			if term != "" && strings.Contains(name, term) {
				return v, true
			}
		}
	}
	return Voice{}, false
}

// NewEngine constructs an engine with factory and applies cfg. Voice
// enumeration failures and a missing matching voice are not errors; the
// engine keeps its default voice.
func NewEngine(ctx context.Context, factory Factory, cfg EngineConfig) (Engine, error) {
	engine, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing speech engine: %w", err)
	}
	engine.SetRate(cfg.Rate)

	voices, err := engine.Voices(ctx)
	if err != nil {
		slog.Debug("voice enumeration failed, using default voice", "engine", engine.Name(), "error", err)
		return engine, nil
	}
	if v, ok := SelectVoice(voices, cfg); ok {
		engine.SetVoice(v.ID)
		slog.Debug("selected voice", "engine", engine.Name(), "voice", v.Name, "id", v.ID)
	} else {
		slog.Debug("no voice matches language, using default voice", "engine", engine.Name(), "language", cfg.Language)
	}
	return engine, nil
}
