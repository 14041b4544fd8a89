package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nyashahama/overthinker-backend/internal/worker"
)

var rule = strings.Repeat("=", 60)

// runDemo reads one question per line from in until quit, exit, q or EOF.
// A failing question is reported and the loop continues.
func runDemo(ctx context.Context, in io.Reader, out io.Writer, a *app) error {
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "OVERTHINKER: decision assistant")
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "I'll help you think a decision through from several angles.")
	fmt.Fprintln(out, "Type 'quit' to leave.")
	fmt.Fprintln(out, rule)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nWhat decision would you like help with?\n> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		switch strings.ToLower(question) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Thanks for overthinking with me. Good luck with the decision!")
			return nil
		}

		res, err := a.job.Run(ctx, worker.Request{Text: question, Advise: a.job.CanAdvise()})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintln(out, "\n"+rule)
		fmt.Fprintln(out, "ANALYSIS:")
		fmt.Fprintln(out, rule)
		printResult(out, res)
		fmt.Fprintln(out, rule)
	}

	fmt.Fprintln(out)
	return scanner.Err()
}
