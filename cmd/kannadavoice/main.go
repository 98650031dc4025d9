// Kannadavoice is a small web service that translates English text to Kannada
// and speaks Kannada text as WAV audio.
//
// Usage:
//
//	kannadavoice [serve] [flags]
//	kannadavoice serve --config /path/to/kannadavoice.yaml
//	kannadavoice voices
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nadzzz/kannadavoice/internal/config"
	"github.com/nadzzz/kannadavoice/internal/tts"
	"github.com/nadzzz/kannadavoice/internal/tts/espeak"
	"github.com/nadzzz/kannadavoice/internal/tts/piper"
)

// version is set at build time via ldflags.
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "kannadavoice",
	Short: "English to Kannada translation and speech service",
	Long: `Kannadavoice serves a single-page UI and a JSON API that translates
English text to Kannada through MyMemory and renders Kannada speech as WAV
through espeak-ng or a Piper Wyoming server.

Running without a subcommand is the same as "kannadavoice serve".`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to config file (e.g. configs/kannadavoice.local.yaml)")
	rootCmd.SetVersionTemplate("kannadavoice {{.Version}}\n")
	rootCmd.AddCommand(serveCmd, voicesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newFactory returns the engine factory for the configured backend.
func newFactory(cfg config.TTSConfig) (tts.Factory, error) {
	switch cfg.Backend {
	case "espeak":
		return espeak.NewFactory(cfg.Espeak), nil
	case "piper":
		return piper.NewFactory(cfg.Piper, cfg.Language, afero.NewOsFs()), nil
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
	}
}

func engineConfig(cfg config.TTSConfig) tts.EngineConfig {
	return tts.EngineConfig{Rate: cfg.Rate, Language: cfg.Language}
}
