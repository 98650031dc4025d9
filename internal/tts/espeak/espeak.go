// Package espeak implements tts.Engine on top of the espeak-ng command line
// synthesizer.
//
// espeak-ng ships a Kannada voice ("kn") and writes WAV directly to a file
// with -w, which makes it a natural fit for the render-to-file contract.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nadzzz/kannadavoice/internal/config"
	"github.com/nadzzz/kannadavoice/internal/tts"
)

// Engine drives one espeak-ng invocation per SaveToFile call.
type Engine struct {
	binary string
	rate   int
	voice  string
}

// New resolves the configured binary and returns an engine with espeak-ng's
// defaults. A missing binary is an initialization error.
func New(cfg config.EspeakConfig) (*Engine, error) {
	binary := cfg.Binary
	if binary == "" {
		binary = "espeak-ng"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("espeak binary %q: %w", binary, err)
	}
	return &Engine{binary: path}, nil
}

// NewFactory returns a tts.Factory producing a fresh Engine per call.
func NewFactory(cfg config.EspeakConfig) tts.Factory {
	return func(ctx context.Context) (tts.Engine, error) {
		return New(cfg)
	}
}

// Name returns the backend identifier.
func (e *Engine) Name() string { return "espeak" }

// SetRate sets the speaking rate in words per minute (espeak-ng -s).
func (e *Engine) SetRate(wpm int) { e.rate = wpm }

// SetVoice sets the voice passed to espeak-ng -v.
func (e *Engine) SetVoice(id string) { e.voice = id }

// Voices lists installed voices using espeak-ng --voices.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	cmd := exec.CommandContext(ctx, e.binary, "--voices")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("listing espeak voices: %w", err)
	}
	return parseVoices(out), nil
}

// SaveToFile renders text into path as WAV. Text is passed on stdin so it is
// never interpreted as a flag.
func (e *Engine) SaveToFile(ctx context.Context, text, path string) error {
	cmd := exec.CommandContext(ctx, e.binary, e.args(path)...)
	cmd.Stdin = strings.NewReader(text)

	slog.Debug("espeak synthesize", "text_length", len(text), "voice", e.voice, "rate", e.rate)

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("espeak: %w: %s", err, bytes.TrimSpace(output))
	}
	return nil
}

func (e *Engine) args(path string) []string {
	args := []string{"--stdin", "-w", path}
	if e.rate > 0 {
		args = append(args, "-s", strconv.Itoa(e.rate))
	}
	if e.voice != "" {
		args = append(args, "-v", e.voice)
	}
	return args
}

// parseVoices reads the table printed by espeak-ng --voices:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  kn              --/M      Kannada            dra/kn
func parseVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		v := tts.Voice{
			ID:        fields[1],
			Name:      fields[3],
			Languages: []string{fields[1]},
		}
		// Trailing "(lang priority)" pairs name additional languages.
		for _, f := range fields[5:] {
			f = strings.Trim(f, "()")
			if f != "" {
				if _, err := strconv.Atoi(f); err != nil {
					v.Languages = append(v.Languages, f)
				}
			}
		}
		voices = append(voices, v)
	}
	return voices
}
