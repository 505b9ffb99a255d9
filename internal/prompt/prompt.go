// Package prompt asks an operator for the broker settings to provision.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/jmX86/TempSync-hardware/internal/record"
)

// ErrUnrecognizedAnswer is returned when a Yes/No question gets any other answer.
var ErrUnrecognizedAnswer = errors.New("unrecognized answer, expected Yes or No")

// LineReader is the subset of *readline.Instance used for prompting.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
	ReadPassword(prompt string) ([]byte, error)
}

type Prompter struct {
	r     LineReader
	close func() error
}

// NewTerminal returns a Prompter reading from the controlling terminal.
func NewTerminal() (*Prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Prompter{r: rl, close: rl.Close}, nil
}

func New(r LineReader) *Prompter {
	return &Prompter{r: r}
}

func (p *Prompter) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// Record asks for every field of the record in turn.
// Any input error aborts the whole sequence.
func (p *Prompter) Record() (record.Record, error) {
	var r record.Record

	useIP, err := p.yesNo("Do you want to use IP for broker[Yes/No]: ")
	if err != nil {
		return r, err
	}
	if useIP {
		r.Mode = record.ModeIP
	} else {
		r.Mode = record.ModeHostname
	}

	if r.Address, err = p.line("Broker address: "); err != nil {
		return r, err
	}

	port, err := p.line("Broker port: ")
	if err != nil {
		return r, err
	}
	if r.Port, err = strconv.Atoi(strings.TrimSpace(port)); err != nil {
		return r, fmt.Errorf("invalid broker port %q: %w", port, err)
	}

	if r.HasCredentials, err = p.yesNo("Does the broker require authentication[Yes/No]: "); err != nil {
		return r, err
	}
	if !r.HasCredentials {
		return r, nil
	}

	if r.Username, err = p.line("Username: "); err != nil {
		return r, err
	}

	password, err := p.r.ReadPassword("Password: ")
	if err != nil {
		return r, fmt.Errorf("failed to read password: %w", err)
	}
	r.Password = string(password)

	return r, nil
}

func (p *Prompter) line(prompt string) (string, error) {
	p.r.SetPrompt(prompt)
	s, err := p.r.Readline()
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return s, nil
}

// yesNo accepts exactly "Yes" or "No".
func (p *Prompter) yesNo(prompt string) (bool, error) {
	answer, err := p.line(prompt)
	if err != nil {
		return false, err
	}

	switch answer {
	case "Yes":
		return true, nil
	case "No":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnrecognizedAnswer, answer)
	}
}
