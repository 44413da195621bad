// Package secret resolves API credentials from the environment or an interactive prompt.
package secret

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrMissingCredential is returned when neither the environment nor the prompt yields a key.
var ErrMissingCredential = errors.New("missing credential")

// Prompter reads a secret from the user without echoing it.
type Prompter interface {
	ReadSecret(prompt string) (string, error)
}

// Resolve returns the value of envName. When unset it asks the prompter once,
// exports the answer into the process environment and returns it.
func Resolve(envName string, p Prompter) (string, error) {
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, nil
	}
	if p == nil {
		return "", fmt.Errorf("%w: %s not set", ErrMissingCredential, envName)
	}
	v, err := p.ReadSecret(fmt.Sprintf("Enter your %s: ", envName))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMissingCredential, envName, err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingCredential, envName)
	}
	if err := os.Setenv(envName, v); err != nil {
		return "", err
	}
	return v, nil
}

// TerminalPrompter reads hidden input from a terminal file descriptor.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter prompts on stderr and reads from stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

// ReadSecret implements Prompter.
func (t *TerminalPrompter) ReadSecret(prompt string) (string, error) {
	fd := int(t.In.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(t.Out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(t.Out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
