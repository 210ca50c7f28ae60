package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

const maxPromptAttempts = 3

// promptChoice asks the user to pick one of choices by number or name. It
// gives up after maxPromptAttempts invalid answers.
func promptChoice[T ~string](in *bufio.Reader, out io.Writer, question string, choices []T, fallback T, parse func(string) (T, error)) (T, error) {
	fmt.Fprintln(out, question)
	for i, choice := range choices {
		marker := ""
		if choice == fallback {
			marker = " (default)"
		}
		fmt.Fprintf(out, "  %d) %s%s\n", i+1, choice, marker)
	}

	for attempt := 1; attempt <= maxPromptAttempts; attempt++ {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if err != nil && answer == "" {
			if err == io.EOF {
				return fallback, nil
			}
			return "", fmt.Errorf("read answer: %w", err)
		}
		if answer == "" {
			return fallback, nil
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil {
			if n >= 1 && n <= len(choices) {
				return choices[n-1], nil
			}
			fmt.Fprintf(out, "choose a number between 1 and %d\n", len(choices))
			continue
		}
		value, parseErr := parse(answer)
		if parseErr == nil {
			return value, nil
		}
		fmt.Fprintln(out, parseErr)
	}
	return "", fmt.Errorf("no valid answer after %d attempts", maxPromptAttempts)
}

// interactiveInput reports whether r is a terminal a prompt can read from.
func interactiveInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
