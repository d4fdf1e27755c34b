package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads answers line by line.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter returns a Prompter reading from in and echoing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label and returns the trimmed answer. It returns io.EOF once
// input is exhausted and nothing was typed.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskRequired repeats the question until a non-empty answer is given.
func (p *Prompter) AskRequired(label, what string) (string, error) {
	for {
		answer, err := p.Ask(label)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintf(p.out, "%s is required!\n", what)
	}
}

// AskFloat repeats the question until a number is given. An empty answer
// returns def.
func (p *Prompter) AskFloat(label string, def float64) (float64, error) {
	for {
		answer, err := p.Ask(label)
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(answer, "$"), 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "Please enter a valid number (got %q).\n", answer)
	}
}
