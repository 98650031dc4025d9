// Package speech renders text to an in-memory WAV payload.
//
// Every Render call owns a fresh engine and a uniquely named temporary file.
// The file is removed before Render returns, whether synthesis and the read
// succeeded or not; only the bytes leave this package.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/nadzzz/kannadavoice/internal/apperr"
	"github.com/nadzzz/kannadavoice/internal/message"
	"github.com/nadzzz/kannadavoice/internal/tts"
)

// MsgEmptyText is returned to the client for blank speech requests.
const MsgEmptyText = "Please provide text"

// ContentType is the MIME type of every payload Render returns.
const ContentType = "audio/wav"

// Renderer synthesizes speech through temporary files on fs.
type Renderer struct {
	factory tts.Factory
	cfg     tts.EngineConfig
	fs      afero.Fs
	dir     string
}

// New creates a Renderer. Temporary files go to dir, or the OS temp
// directory when dir is empty.
func New(factory tts.Factory, cfg tts.EngineConfig, fs afero.Fs, dir string) *Renderer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Renderer{factory: factory, cfg: cfg, fs: fs, dir: dir}
}

// Dir returns the directory temporary audio files are created in.
func (r *Renderer) Dir() string { return r.dir }

// Render validates req and returns the synthesized audio.
func (r *Renderer) Render(ctx context.Context, req message.SpeechRequest) ([]byte, error) {
	text := req.Trimmed()
	if text == "" {
		return nil, apperr.NewValidation(MsgEmptyText)
	}

	engine, err := tts.NewEngine(ctx, r.factory, r.cfg)
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	audio, err := r.renderToTemp(ctx, engine, text)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return audio, nil
}

func (r *Renderer) renderToTemp(ctx context.Context, engine tts.Engine, text string) ([]byte, error) {
	path, err := r.createTemp()
	if err != nil {
		return nil, err
	}
	defer r.release(path)

	if err := engine.SaveToFile(ctx, text, path); err != nil {
		return nil, fmt.Errorf("synthesizing speech: %w", err)
	}

	audio, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech engine %s produced no audio", engine.Name())
	}

	slog.Debug("speech rendered", "engine", engine.Name(), "text_length", len(text), "audio_bytes", len(audio))
	return audio, nil
}

// createTemp reserves a new, empty, uniquely named .wav file.
func (r *Renderer) createTemp() (string, error) {
	if err := r.fs.MkdirAll(r.dir, 0o700); err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	path := filepath.Join(r.dir, "kannada-"+uuid.NewString()+".wav")
	f, err := r.fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating temp audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = r.fs.Remove(path)
		return "", fmt.Errorf("closing temp audio file: %w", err)
	}
	return path, nil
}

func (r *Renderer) release(path string) {
	if err := r.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove temp audio file", "path", path, "error", err)
	}
}
