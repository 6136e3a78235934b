package resolve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// TerminalChooser prompts on a terminal and re-asks until it reads a whole
// number. It satisfies Chooser.
type TerminalChooser struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalChooser prompts on stdin/stdout.
func NewTerminalChooser() *TerminalChooser {
	return &TerminalChooser{In: os.Stdin, Out: os.Stdout}
}

func (t *TerminalChooser) Choose(header, prompt string, options []string, omitted int) (int, error) {
	fmt.Fprintln(t.Out, header)
	for i, opt := range options {
		fmt.Fprintf(t.Out, "  %d. %s\n", i+1, opt)
	}
	if omitted > 0 {
		fmt.Fprintf(t.Out, "  ...and %d more results.\n", omitted)
	}

	scanner := bufio.NewScanner(t.In)
	for {
		fmt.Fprintf(t.Out, "%s: ", prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, fmt.Errorf("reading choice: %w", err)
			}
			return 0, fmt.Errorf("reading choice: %w", io.EOF)
		}
		text := strings.TrimSpace(scanner.Text())
		choice, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintf(t.Out, "Error: %q is not a valid number.\n", text)
			continue
		}
		return choice, nil
	}
}
