package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoSecret is returned when a secret source yields nothing.
var ErrNoSecret = errors.New("no secret available")

// Secret is a handle to a credential. Callers resolve it only for the moment
// they need it and wipe the returned bytes afterwards.
type Secret interface {
	Resolve() ([]byte, error)
}

// SecretFunc adapts a function to the Secret interface.
type SecretFunc func() ([]byte, error)

func (f SecretFunc) Resolve() ([]byte, error) { return f() }

// EnvSecret reads the secret from the named environment variable.
type EnvSecret string

func (e EnvSecret) Resolve() ([]byte, error) {
	v, ok := os.LookupEnv(string(e))
	if !ok || v == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", ErrNoSecret, string(e))
	}
	return []byte(v), nil
}

// FileSecret reads the secret from a file, trimming one trailing newline.
type FileSecret string

func (f FileSecret) Resolve() ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, err
	}
	data = bytes.TrimRight(data, "\r\n")
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoSecret, string(f))
	}
	return data, nil
}

// PromptSecret asks for the secret on a terminal without echoing it.
type PromptSecret struct {
	Prompt string
	In     *os.File
	Out    io.Writer
}

func (p PromptSecret) Resolve() ([]byte, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	if !term.IsTerminal(int(in.Fd())) {
		return nil, fmt.Errorf("%w: stdin is not a terminal", ErrNoSecret)
	}

	fmt.Fprint(out, p.Prompt)
	secret, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNoSecret)
	}
	return secret, nil
}

// FirstSecret tries each source in order and returns the first that resolves.
type FirstSecret []Secret

func (s FirstSecret) Resolve() ([]byte, error) {
	var errs []error
	for _, src := range s {
		if src == nil {
			continue
		}
		secret, err := src.Resolve()
		if err == nil {
			return secret, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoSecret
	}
	return nil, errors.Join(errs...)
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
