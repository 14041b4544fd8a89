package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nyashahama/overthinker-backend/internal/worker"
)

type analyzeFlags struct {
	json   bool
	advise bool
	file   string
}

func newAnalyzeCmd(logger *slog.Logger, build appBuilder) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyse one scenario, or a file of scenarios",
		Long: `Analyse a single scenario given as arguments, or a batch read from --file
(one scenario per line, blank lines skipped). Batches run on the worker pool
and print in input order.`,
		Example: `  overthinker analyze "Should I drive to Paris tonight?"
  overthinker analyze --json --file scenarios.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var texts []string
			switch {
			case flags.file != "" && len(args) > 0:
				return errors.New("give either --file or text arguments, not both")
			case flags.file != "":
				var err error
				if texts, err = readScenarios(flags.file); err != nil {
					return err
				}
			default:
				text := strings.TrimSpace(strings.Join(args, " "))
				if text == "" {
					return errors.New("nothing to analyze: pass text or --file")
				}
				texts = []string{text}
			}

			a, err := build(cmd.Context(), logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if flags.advise && !a.job.CanAdvise() {
				logger.Warn("advice requested but no advisor is configured")
			}

			reqs := make([]worker.Request, len(texts))
			for i, t := range texts {
				reqs[i] = worker.Request{Text: t, Advise: flags.advise}
			}
			results, err := a.pool.Run(cmd.Context(), reqs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.json {
				js := make([]jsonResult, len(results))
				for i, r := range results {
					js[i] = jsonResult{Analysis: r.Analysis, Advice: r.Advice}
				}
				if flags.file == "" {
					return writeJSON(out, js[0])
				}
				return writeJSON(out, js)
			}

			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out, rule)
				}
				printResult(out, r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&flags.advise, "advise", false, "ask the configured advisor for a recommendation")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "read scenarios from `path`, one per line")
	return cmd
}

func readScenarios(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("read scenarios: %s has no scenarios", path)
	}
	return texts, nil
}
