package cliio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skaphos/gitopen/internal/tableutil"
)

// ErrNoSelection is returned when the user declines a choice prompt.
var ErrNoSelection = errors.New("no selection made")

// PromptYesNo writes prompt and reads a yes/no response from input.
func PromptYesNo(out io.Writer, in io.Reader, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	choice := strings.ToLower(strings.TrimSpace(line))
	return choice == "y" || choice == "yes", nil
}

// PromptChoice lists options numbered from 1 and reads the chosen number.
// An empty answer picks defaultIndex when it is in range; "q", an empty
// answer without a default, or end of input yield ErrNoSelection.
func PromptChoice(out io.Writer, in io.Reader, prompt string, options []string, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoSelection
	}
	hasDefault := defaultIndex >= 0 && defaultIndex < len(options)
	if _, err := fmt.Fprintln(out, prompt); err != nil {
		return -1, err
	}
	for i, option := range options {
		marker := " "
		if hasDefault && i == defaultIndex {
			marker = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %d) %s\n", marker, i+1, option); err != nil {
			return -1, err
		}
	}
	hint := fmt.Sprintf("Select [1-%d, q to cancel]: ", len(options))
	if hasDefault {
		hint = fmt.Sprintf("Select [1-%d, enter for %d, q to cancel]: ", len(options), defaultIndex+1)
	}
	if _, err := fmt.Fprint(out, hint); err != nil {
		return -1, err
	}

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return -1, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	switch {
	case answer == "" && err == io.EOF && line == "":
		return -1, ErrNoSelection
	case answer == "" && hasDefault:
		return defaultIndex, nil
	case answer == "" || answer == "q" || answer == "quit":
		return -1, ErrNoSelection
	}
	n, convErr := strconv.Atoi(answer)
	if convErr != nil || n < 1 || n > len(options) {
		return -1, fmt.Errorf("invalid selection %q (expected 1-%d)", answer, len(options))
	}
	return n - 1, nil
}

// WriteTable renders a simple tab-separated table with optional headers.
func WriteTable(out io.Writer, stripEscape bool, noHeaders bool, headers []string, rows [][]string) error {
	w := tableutil.New(out, stripEscape)
	if err := tableutil.PrintHeaders(w, noHeaders, headers...); err != nil {
		return err
	}
	for _, row := range rows {
		if err := tableutil.PrintRow(w, row...); err != nil {
			return err
		}
	}
	return w.Flush()
}
