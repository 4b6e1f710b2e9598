package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chriscow/musickly/internal/config"
	"github.com/chriscow/musickly/internal/flow"
	"github.com/chriscow/musickly/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var flowCmd = &cobra.Command{
	Use:   "flow <name>",
	Short: "Run a single flow and print its JSON output",
	Long: `Run a flow once against the configured providers. The input is a JSON
object given inline or, prefixed with @, read from a file ("@-" reads stdin).
With no name, the available flows are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, d := range flow.Definitions() {
				fmt.Fprintf(out, "%-16s %s\n", d.Name, d.Description)
			}
			return nil
		}

		path, _ := cmd.Flags().GetString("config")
		input, _ := cmd.Flags().GetString("input")

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		logger := setupLogger(cfg.Logging)

		raw, err := readInput(input, cmd.InOrStdin())
		if err != nil {
			return err
		}

		providers, err := flow.ProvidersFromConfig(cfg.Providers)
		if err != nil {
			return err
		}
		svc := flow.NewService(providers, flow.OptionsFromConfig(cfg.Flows), logger,
			metrics.New(prometheus.NewRegistry()))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		result, err := svc.Run(ctx, args[0], raw)
		if err != nil {
			logger.Error("Flow failed", slog.String("flow", args[0]), slog.String("error", err.Error()))
			return err
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// readInput resolves the --input flag into raw JSON.
func readInput(arg string, stdin io.Reader) (json.RawMessage, error) {
	var data []byte
	switch {
	case arg == "@-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		data = b
	default:
		data = []byte(arg)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("input is not valid JSON")
	}
	return data, nil
}

func init() {
	flowCmd.Flags().String("config", "", "Path to a YAML config file")
	flowCmd.Flags().String("input", "", "Flow input as JSON, @file or @- for stdin")
}
