package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chriscow/musickly/internal/config"
	"github.com/chriscow/musickly/pkg/plugin"
	_ "github.com/chriscow/musickly/pkg/plugin/fake"   // Import to register fake plugins
	_ "github.com/chriscow/musickly/pkg/plugin/openai" // Import to register OpenAI plugins
	"github.com/chriscow/musickly/pkg/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "musickly",
	Short: "Musickly - AI music creation flows over HTTP",
	Long: `musickly serves a set of AI music flows (lyrics, song ideas, album art,
soundtrack suggestions, mindfulness audio, voice-to-music and remixes) and
ships a few local audio utilities.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins [kind]",
	Short: "List registered provider plugins",
	Long: `List all registered plugins or plugins of a specific kind.
Available kinds: llm, tts, stt, image`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := ""
		if len(args) > 0 {
			kind = args[0]
		}

		plugins := plugin.List(kind)
		out := cmd.OutOrStdout()
		if len(plugins) == 0 {
			if kind == "" {
				fmt.Fprintln(out, "No plugins registered")
			} else {
				fmt.Fprintf(out, "No plugins registered for kind: %s\n", kind)
			}
			return nil
		}

		fmt.Fprintf(out, "%-8s %-20s %-10s %s\n", "KIND", "NAME", "VERSION", "DESCRIPTION")
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, p := range plugins {
			v := p.Version
			if v == "" {
				v = "N/A"
			}
			fmt.Fprintf(out, "%-8s %-20s %-10s %s\n", p.Kind, p.Name, v, p.Description)
		}
		return nil
	},
}

// setupLogger builds the process logger. MUSICKLY_LOG_LEVEL and
// MUSICKLY_LOG_FORMAT override the configured values.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := cfg.Level
	if v := os.Getenv("MUSICKLY_LOG_LEVEL"); v != "" {
		level = v
	}
	format := cfg.Format
	if v := os.Getenv("MUSICKLY_LOG_FORMAT"); v != "" {
		format = v
	}

	logger := slog.New(newLogHandler(os.Stderr, format, level))
	slog.SetDefault(logger)
	return logger
}

// newLogHandler returns a text handler for "console" or "text" in any case
// and a JSON handler otherwise.
func newLogHandler(w io.Writer, format, level string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	switch strings.ToLower(format) {
	case "console", "text":
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewJSONHandler(w, opts)
	}
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

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(flowCmd)
	rootCmd.AddCommand(wavCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
