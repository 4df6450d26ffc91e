package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"LenaAI/pkg/config"
	"LenaAI/pkg/logger"
	svc "LenaAI/pkg/services"

	"github.com/spf13/cobra"
)

var opts evalOptions

var rootCmd = &cobra.Command{
	Use:   "personaeval",
	Short: "Replay prompts through the configured provider with and without the persona",
	Long: `personaeval sends every prompt of a queries file to the completion provider
selected by COMPLETION_PROVIDER twice: once bare ("baseline") and once with the
persona system entry the chat API prepends ("persona"). Results are written as
JSON and CSV into the output directory.

Queries are either ["q1", "q2"] or [{"q": "..."}].`,
	SilenceUsage: true,
	RunE:         runEval,
}

func init() {
	rootCmd.Flags().StringVarP(&opts.QueriesPath, "queries", "q", filepath.Join("cmd", "personaeval", "queries.json"), "queries file")
	rootCmd.Flags().StringVarP(&opts.OutDir, "out", "o", filepath.Join("cmd", "personaeval", "results"), "output directory")
	rootCmd.Flags().StringVar(&opts.Only, "only", "", "comma separated 1-based indexes or substrings selecting queries")
	rootCmd.Flags().DurationVar(&opts.Timeout, "timeout", 40*time.Second, "timeout per provider call")
	rootCmd.Flags().DurationVar(&opts.Sleep, "sleep", 600*time.Millisecond, "pause between provider calls")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	queries, err := readQueries(opts.QueriesPath)
	if err != nil {
		return err
	}
	if opts.Only != "" {
		queries = filterQueries(queries, opts.Only)
		log.Info().Int("selected", len(queries)).Str("only", opts.Only).Msg("[filter] running selected queries")
	}

	completer, err := svc.NewCompleter(cfg, log)
	if err != nil {
		return err
	}
	builder := svc.NewContextBuilder(nil, 0, cfg.Persona)

	started := time.Now()
	summary := runSummary{
		RunID:        fmt.Sprintf("eval-%s", started.Format("20060102-150405")),
		StartedAt:    started.Format(time.RFC3339),
		Env:          cfg.AppEnv,
		Provider:     cfg.Provider,
		Model:        cfg.ProviderModel(),
		Persona:      cfg.Persona,
		Only:         opts.Only,
		TotalQueries: len(queries),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for i, q := range queries {
		for _, mode := range []string{modeBaseline, modePersona} {
			r := runOnce(ctx, completer, builder, q, mode, opts.Timeout)
			r.Model = summary.Model
			summary.Results = append(summary.Results, r)
			log.Info().
				Int("n", i+1).
				Str("mode", mode).
				Str("query", truncate(q, 64)).
				Int64("duration_ms", r.DurationMs).
				Bool("failed", r.Error != "").
				Msg("[eval] done")
			if opts.Sleep > 0 {
				time.Sleep(opts.Sleep)
			}
		}
	}
	summary.EndedAt = time.Now().Format(time.RFC3339)

	jsonPath, csvPath, err := writeResults(opts.OutDir, started, summary)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Saved:")
	fmt.Fprintln(cmd.OutOrStdout(), " -", jsonPath)
	fmt.Fprintln(cmd.OutOrStdout(), " -", csvPath)
	return nil
}
