// Package shell is the text front end of the cave: a login prompt followed
// by a read-eval loop of short commands.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrTooManyTries = errors.New("too many tries")

// Terminal reads lines from and writes text to one connection. The first
// write error is kept and returned by the next read.
type Terminal struct {
	w   io.Writer
	br  *bufio.Reader
	err error
}

func NewTerminal(rw io.ReadWriter) *Terminal {
	return &Terminal{
		w:  rw,
		br: bufio.NewReader(rw),
	}
}

func (t *Terminal) Printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *Terminal) Println(args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, args...)
}

// ReadLine returns the next line without its line ending. A final line
// without a newline is returned before io.EOF.
func (t *Terminal) ReadLine() (string, error) {
	if t.err != nil {
		return "", t.err
	}

	line, err := t.br.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type PromptOpt func(*promptConfig)

// WithValidator rejects input for which v returns false, printing the
// returned message and asking again.
func WithValidator(v promptValidator) PromptOpt {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

// WithMaxTries gives up with ErrTooManyTries after i rejected inputs.
func WithMaxTries(i int) PromptOpt {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

func (t *Terminal) Prompt(prompt string, opts ...PromptOpt) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		t.Printf("%s", prompt)

		input, err := t.ReadLine()
		if err != nil {
			return "", err
		}

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				t.Printf("%s", msg)

				tries++
				if config.tries > 0 && config.tries == tries {
					return "", ErrTooManyTries
				}
				continue
			}
		}

		return input, nil
	}
}
