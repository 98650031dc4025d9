package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/nadzzz/kannadavoice/internal/apperr"
	"github.com/nadzzz/kannadavoice/internal/message"
	"github.com/nadzzz/kannadavoice/internal/tts"
)

const tempDir = "/tmp/kannadavoice"

type fakeEngine struct {
	fs    afero.Fs
	audio []byte
	err   error

	mu    sync.Mutex
	paths []string
	rate  int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{{ID: "kn", Name: "Kannada"}}, nil
}

func (f *fakeEngine) SetRate(wpm int) {
	f.mu.Lock()
	f.rate = wpm
	f.mu.Unlock()
}

func (f *fakeEngine) SetVoice(id string) {}

func (f *fakeEngine) SaveToFile(ctx context.Context, text, path string) error {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if err := afero.WriteFile(f.fs, path, f.audio, 0o600); err != nil {
		return err
	}
	return f.err
}

func newRenderer(fs afero.Fs, e *fakeEngine) *Renderer {
	factory := func(ctx context.Context) (tts.Engine, error) { return e, nil }
	return New(factory, tts.DefaultEngineConfig(), fs, tempDir)
}

func assertNoTempFiles(t *testing.T, fs afero.Fs) {
	t.Helper()
	matches, err := afero.Glob(fs, tempDir+"/*.wav")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no temp audio files, found %v", matches)
	}
}

func TestRender_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := &fakeEngine{fs: fs, audio: []byte("RIFF....WAVE")}
	r := newRenderer(fs, e)

	audio, err := r.Render(context.Background(), message.SpeechRequest{Text: " ನಮಸ್ಕಾರ "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "RIFF....WAVE" {
		t.Errorf("unexpected audio %q", audio)
	}
	if e.rate != 150 {
		t.Errorf("expected engine rate 150, got %d", e.rate)
	}
	if len(e.paths) != 1 || !strings.HasSuffix(e.paths[0], ".wav") || !strings.HasPrefix(e.paths[0], tempDir) {
		t.Errorf("unexpected temp path %v", e.paths)
	}
	assertNoTempFiles(t, fs)
}

func TestRender_BlankText(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := &fakeEngine{fs: fs, audio: []byte("RIFF")}
	r := newRenderer(fs, e)

	_, err := r.Render(context.Background(), message.SpeechRequest{Text: "   "})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperr.Message(err) != MsgEmptyText {
		t.Errorf("unexpected message %q", apperr.Message(err))
	}
	if len(e.paths) != 0 {
		t.Error("engine should not be used for blank text")
	}
}

func TestRender_FailuresCleanUp(t *testing.T) {
	tests := []struct {
		name   string
		engine func(fs afero.Fs) *fakeEngine
	}{
		{"synthesis error", func(fs afero.Fs) *fakeEngine {
			return &fakeEngine{fs: fs, audio: []byte("partial"), err: errors.New("espeak: exit status 1")}
		}},
		{"empty audio", func(fs afero.Fs) *fakeEngine {
			return &fakeEngine{fs: fs}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			r := newRenderer(fs, tt.engine(fs))

			audio, err := r.Render(context.Background(), message.SpeechRequest{Text: "hello"})
			if audio != nil {
				t.Errorf("expected no audio, got %q", audio)
			}
			if !errors.Is(err, apperr.ErrInternal) {
				t.Fatalf("expected internal error, got %v", err)
			}
			assertNoTempFiles(t, fs)
		})
	}
}

func TestRender_EngineInitFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	factory := func(ctx context.Context) (tts.Engine, error) { return nil, errors.New("espeak-ng not installed") }
	r := New(factory, tts.DefaultEngineConfig(), fs, tempDir)

	_, err := r.Render(context.Background(), message.SpeechRequest{Text: "hello"})
	if !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(apperr.Message(err), "espeak-ng not installed") {
		t.Errorf("expected underlying message, got %q", apperr.Message(err))
	}
}

func TestRender_ReadFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	e := &fakeEngine{fs: base, audio: []byte("RIFF")}
	r := newRenderer(&unreadableFs{Fs: base}, e)

	_, err := r.Render(context.Background(), message.SpeechRequest{Text: "hello"})
	if !errors.Is(err, apperr.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	assertNoTempFiles(t, base)
}

func TestRender_ConcurrentRequestsUseDistinctFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := &fakeEngine{fs: fs, audio: []byte("RIFF")}
	r := newRenderer(fs, e)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Render(context.Background(), message.SpeechRequest{Text: "hello"}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, p := range e.paths {
		if seen[p] {
			t.Errorf("temp path %s reused", p)
		}
		seen[p] = true
	}
	assertNoTempFiles(t, fs)
}

func TestNew_DefaultDir(t *testing.T) {
	r := New(nil, tts.DefaultEngineConfig(), afero.NewMemMapFs(), "")
	if r.Dir() == "" {
		t.Error("expected OS temp dir as default")
	}
}

// unreadableFs fails every Open so the read step errors after synthesis.
type unreadableFs struct {
	afero.Fs
}

func (u *unreadableFs) Open(name string) (afero.File, error) {
	return nil, errors.New("permission denied")
}
