package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

var isTerminalFunc = term.IsTerminal // mockable

// Terminal asks questions on the controlling terminal. When stdin is not a
// terminal every confirmation is declined and every prompt dismissed.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewTerminal reads answers from in and writes questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

func (t *Terminal) interactive() bool {
	return isTerminalFunc(t.fd)
}

// Confirm implements tracker.Confirmer.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	if !t.interactive() {
		return false, nil
	}
	fmt.Fprintf(t.out, "%s [y/N] ", question)
	answer, err := t.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "نعم", "ن":
		return true, nil
	}
	return false, nil
}

// Prompt implements tracker.Prompter. An empty answer keeps initial.
func (t *Terminal) Prompt(ctx context.Context, question, initial string) (string, error) {
	if !t.interactive() {
		return "", shared.ErrCancelled
	}
	fmt.Fprintf(t.out, "%s [%s] ", question, initial)
	answer, err := t.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return initial, nil
	}
	return answer, nil
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.ErrCancelled
	}
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", shared.ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
