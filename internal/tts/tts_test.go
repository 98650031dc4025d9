package tts

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeEngine struct {
	voices    []Voice
	voicesErr error
	rate      int
	voice     string
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Voices(ctx context.Context) ([]Voice, error) { return f.voices, f.voicesErr }

func (f *fakeEngine) SetRate(wpm int) { f.rate = wpm }

func (f *fakeEngine) SetVoice(id string) { f.voice = id }

func (f *fakeEngine) SaveToFile(ctx context.Context, text, path string) error { return nil }

func factoryFor(e *fakeEngine) Factory {
	return func(ctx context.Context) (Engine, error) { return e, nil }
}

func TestEngineConfig_MatchTerms(t *testing.T) {
	got := DefaultEngineConfig().MatchTerms()
	want := []string{"kannada", "kn"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchTerms() = %v, want %v", got, want)
	}
}

func TestSelectVoice(t *testing.T) {
	cfg := DefaultEngineConfig()
	tests := []struct {
		name   string
		voices []Voice
		wantID string
		wantOK bool
	}{
		{"by language name", []Voice{{ID: "en", Name: "English"}, {ID: "dra/kn", Name: "KANNADA"}}, "dra/kn", true},
		{"by code", []Voice{{ID: "x", Name: "kn_IN-female"}}, "x", true},
		{"first match wins", []Voice{{ID: "a", Name: "Kannada-1"}, {ID: "b", Name: "Kannada-2"}}, "a", true},
		{"no match", []Voice{{ID: "en", Name: "English"}, {ID: "fr", Name: "French"}}, "", false},
		{"no voices", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := SelectVoice(tt.voices, cfg)
			if ok != tt.wantOK || v.ID != tt.wantID {
				t.Errorf("SelectVoice() = (%q, %v), want (%q, %v)", v.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestNewEngine_AppliesConfig(t *testing.T) {
	e := &fakeEngine{voices: []Voice{{ID: "en", Name: "English"}, {ID: "kn", Name: "Kannada"}}}

	got, err := NewEngine(context.Background(), factoryFor(e), DefaultEngineConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Engine(e) {
		t.Fatal("expected factory engine to be returned")
	}
	if e.rate != 150 {
		t.Errorf("expected rate 150, got %d", e.rate)
	}
	if e.voice != "kn" {
		t.Errorf("expected voice 'kn', got %q", e.voice)
	}
}

func TestNewEngine_VoiceEnumerationFailureKeepsDefault(t *testing.T) {
	e := &fakeEngine{voicesErr: errors.New("no voices")}

	if _, err := NewEngine(context.Background(), factoryFor(e), DefaultEngineConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.voice != "" {
		t.Errorf("expected default voice, got %q", e.voice)
	}
	if e.rate != 150 {
		t.Errorf("expected rate 150, got %d", e.rate)
	}
}

func TestNewEngine_FactoryError(t *testing.T) {
	factory := func(ctx context.Context) (Engine, error) { return nil, errors.New("binary not found") }

	if _, err := NewEngine(context.Background(), factory, DefaultEngineConfig()); err == nil {
		t.Error("expected error from failing factory")
	}
}
