package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kannadavoice.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Server.GRPCHealthPort != 0 {
		t.Errorf("expected gRPC health disabled, got port %d", cfg.Server.GRPCHealthPort)
	}
	if got := cfg.Translation.LangPair(); got != "en|kn" {
		t.Errorf("expected langpair en|kn, got %q", got)
	}
	if cfg.Translation.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.Translation.Timeout)
	}
	if cfg.TTS.Backend != "espeak" || cfg.TTS.Rate != 150 || cfg.TTS.Language != "kn" {
		t.Errorf("unexpected tts defaults %+v", cfg.TTS)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  grpc_health_port: 9090
  cors_origins: ["https://example.com"]
translation:
  timeout: 3s
  email: ${KV_TEST_EMAIL}
tts:
  backend: piper
  rate: 120
  piper:
    endpoint: piper:10200
    voices:
      kn: kn_IN-custom-medium
logging:
  level: debug
  format: text
`)
	t.Setenv("KV_TEST_EMAIL", "ops@example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 || cfg.Server.GRPCHealthPort != 9090 {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Translation.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.Translation.Timeout)
	}
	if cfg.Translation.Email != "ops@example.com" {
		t.Errorf("expected email resolved from env, got %q", cfg.Translation.Email)
	}
	if cfg.TTS.Backend != "piper" || cfg.TTS.Rate != 120 {
		t.Errorf("unexpected tts config %+v", cfg.TTS)
	}
	if cfg.TTS.Piper.Voices["kn"] != "kn_IN-custom-medium" {
		t.Errorf("unexpected piper voices %v", cfg.TTS.Piper.Voices)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("KANNADAVOICE_SERVER_PORT", "6000")
	t.Setenv("KANNADAVOICE_TTS_RATE", "90")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("expected env port 6000, got %d", cfg.Server.Port)
	}
	if cfg.TTS.Rate != 90 {
		t.Errorf("expected env rate 90, got %d", cfg.TTS.Rate)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown backend", "tts:\n  backend: festival\n", "unknown tts backend"},
		{"bad language", "tts:\n  language: \"not a language\"\n", "invalid language code"},
		{"zero rate", "tts:\n  rate: 0\n", "tts.rate"},
		{"negative timeout", "translation:\n  timeout: -1s\n", "translation.timeout"},
		{"empty endpoint", "translation:\n  endpoint: \"\"\n", "translation.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("KV_TEST_REF", "value")

	tests := map[string]string{
		"${KV_TEST_REF}":   "value",
		"${KV_TEST_UNSET}": "${KV_TEST_UNSET}",
		"plain":            "plain",
		"":                 "",
	}
	for in, want := range tests {
		if got := resolveEnvRef(in); got != want {
			t.Errorf("resolveEnvRef(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWatch_ReappliesLogLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	cfg, err := Watch(path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	SetupLogging(cfg.Logging)
	if logLevel.Level() != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", logLevel.Level())
	}

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for logLevel.Level() != slog.LevelDebug {
		if time.Now().After(deadline) {
			t.Fatal("log level was not updated after config change")
		}
		time.Sleep(20 * time.Millisecond)
	}
	logLevel.Set(slog.LevelInfo)
}
