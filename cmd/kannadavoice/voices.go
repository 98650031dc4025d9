package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nadzzz/kannadavoice/internal/config"
	"github.com/nadzzz/kannadavoice/internal/tts"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voices of the configured tts backend",
	Long: `List every voice the configured backend reports. The voice the service
would select for the configured language is marked with "*".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		config.SetupLogging(config.LoggingConfig{Level: "warn", Format: cfg.Logging.Format})

		factory, err := newFactory(cfg.TTS)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		engine, err := factory(ctx)
		if err != nil {
			return fmt.Errorf("initializing speech engine: %w", err)
		}
		voices, err := engine.Voices(ctx)
		if err != nil {
			return err
		}
		return printVoices(cmd.OutOrStdout(), engine.Name(), voices, engineConfig(cfg.TTS))
	},
}

func printVoices(out io.Writer, backend string, voices []tts.Voice, cfg tts.EngineConfig) error {
	if len(voices) == 0 {
		_, err := fmt.Fprintf(out, "%s reports no voices\n", backend)
		return err
	}

	selected, ok := tts.SelectVoice(voices, cfg)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tLANGUAGES")
	for _, v := range voices {
		mark := ""
		if ok && v.ID == selected.ID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, v.ID, v.Name, strings.Join(v.Languages, ","))
	}
	return tw.Flush()
}
