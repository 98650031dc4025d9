// Package config handles loading and validating the kannadavoice configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config is the root configuration for the kannadavoice daemon.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Translation TranslationConfig `mapstructure:"translation"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the HTTP and health server settings.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	HealthPort        int           `mapstructure:"health_port"`
	GRPCHealthPort    int           `mapstructure:"grpc_health_port"` // 0 disables the gRPC health service
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
}

// TranslationConfig configures the external translation provider.
type TranslationConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	SourceLang string        `mapstructure:"source_lang"`
	TargetLang string        `mapstructure:"target_lang"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Email      string        `mapstructure:"email"` // optional MyMemory contact address
}

// LangPair returns the provider language pair, e.g. "en|kn".
func (c TranslationConfig) LangPair() string {
	return c.SourceLang + "|" + c.TargetLang
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend  string       `mapstructure:"backend"` // "espeak" or "piper"
	Rate     int          `mapstructure:"rate"`    // words per minute
	Language string       `mapstructure:"language"`
	TempDir  string       `mapstructure:"temp_dir"`
	Espeak   EspeakConfig `mapstructure:"espeak"`
	Piper    PiperConfig  `mapstructure:"piper"`
}

// EspeakConfig holds settings for the local espeak-ng binary.
type EspeakConfig struct {
	Binary string `mapstructure:"binary"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string            `mapstructure:"endpoint"` // Wyoming TCP endpoint (host:port)
	Voices   map[string]string `mapstructure:"voices"`   // ISO-639-1 language code -> Piper voice model name
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from .env, file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./kannadavoice.yaml, ./configs/kannadavoice.yaml, /etc/kannadavoice/kannadavoice.yaml.
func Load(configFile string) (*Config, error) {
	cfg, _, err := load(configFile)
	return cfg, err
}

func load(configFile string) (*Config, *viper.Viper, error) {
	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("kannadavoice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/kannadavoice")
	}

	// Environment variables: KANNADAVOICE_SERVER_PORT, KANNADAVOICE_TTS_BACKEND, etc.
	v.SetEnvPrefix("KANNADAVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Translation.Email = resolveEnvRef(cfg.Translation.Email)
	cfg.Translation.Endpoint = resolveEnvRef(cfg.Translation.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_health_port", 0)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("translation.endpoint", "https://api.mymemory.translated.net/get")
	v.SetDefault("translation.source_lang", "en")
	v.SetDefault("translation.target_lang", "kn")
	v.SetDefault("translation.timeout", 10*time.Second)
	v.SetDefault("translation.email", "")
	v.SetDefault("tts.backend", "espeak")
	v.SetDefault("tts.rate", 150)
	v.SetDefault("tts.language", "kn")
	v.SetDefault("tts.temp_dir", "")
	v.SetDefault("tts.espeak.binary", "espeak-ng")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks values that would otherwise fail on the first request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Translation.Endpoint == "" {
		return fmt.Errorf("translation.endpoint is required")
	}
	if c.Translation.Timeout <= 0 {
		return fmt.Errorf("translation.timeout must be positive, got %s", c.Translation.Timeout)
	}
	for key, code := range map[string]string{
		"translation.source_lang": c.Translation.SourceLang,
		"translation.target_lang": c.Translation.TargetLang,
		"tts.language":            c.TTS.Language,
	} {
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("%s: invalid language code %q: %w", key, code, err)
		}
	}
	if c.TTS.Rate <= 0 {
		return fmt.Errorf("tts.rate must be positive, got %d", c.TTS.Rate)
	}
	switch c.TTS.Backend {
	case "espeak", "piper":
	default:
		return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// logLevel is shared by every handler built in SetupLogging so Watch can
// change verbosity without rebuilding the logger.
var logLevel = new(slog.LevelVar)

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	logLevel.Set(parseLevel(cfg.Level))

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Watch loads the configuration like Load and additionally re-applies the
// logging level whenever the config file changes on disk. Other settings
// require a restart.
func Watch(configFile string) (*Config, error) {
	cfg, v, err := load(configFile)
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return cfg, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("logging.level")
		logLevel.Set(parseLevel(level))
		slog.Info("config file changed", "path", e.Name, "op", e.Op.String(), "log_level", level)
	})
	v.WatchConfig()
	return cfg, nil
}
