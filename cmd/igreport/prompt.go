package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"igreport/pkg/ui"
)

// prompter reads answers from stdin, hiding secrets on a terminal
type prompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter() *prompter {
	return &prompter{in: os.Stdin, reader: bufio.NewReader(os.Stdin), out: ui.Output}
}

// Line asks for one line of input
func (p *prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Secret asks for input without echo when stdin is a terminal
func (p *prompter) Secret(label string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.Line(label)
	}

	fmt.Fprint(p.out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// Confirm asks a yes/no question. An empty answer picks def.
func (p *prompter) Confirm(label string, def bool) bool {
	hint := " (y/N): "
	if def {
		hint = " (Y/n): "
	}
	answer, err := p.Line(label + hint)
	if err != nil || answer == "" {
		return def
	}
	return strings.HasPrefix(strings.ToLower(answer), "y")
}
