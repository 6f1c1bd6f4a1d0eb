// Package prompt reads the location typed at the console.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Message is the prompt line written before the location is read.
const Message = "Enter a city to get its weather report!"

// ErrNoInput is wrapped by InputError when the input ends before any byte is read.
var ErrNoInput = errors.New("input closed before a location was entered")

// ErrInvalidUTF8 is wrapped by InputError when the line is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// InputError reports that the location could not be read. It is fatal and
// is not a weather.OperationError.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return fmt.Sprintf("invalid location: %v", e.Err) }

func (e *InputError) Unwrap() error { return e.Err }

type readResult struct {
	line string
	err  error
}

// ReadLocation writes the prompt to out and returns one line from in,
// including its trailing newline. A final line without a newline is returned as is.
// If ctx is done before the line arrives, the read is abandoned and ctx.Err() is
// returned inside an InputError.
func ReadLocation(ctx context.Context, in io.Reader, out io.Writer) (string, error) {
	if _, err := fmt.Fprintln(out, Message); err != nil {
		return "", &InputError{Err: fmt.Errorf("write prompt: %w", err)}
	}

	done := make(chan readResult, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		done <- readResult{line: line, err: err}
	}()

	var res readResult
	select {
	case <-ctx.Done():
		return "", &InputError{Err: ctx.Err()}
	case res = <-done:
	}

	switch {
	case res.err != nil && !errors.Is(res.err, io.EOF):
		return "", &InputError{Err: res.err}
	case res.line == "":
		return "", &InputError{Err: ErrNoInput}
	case !utf8.ValidString(res.line):
		return "", &InputError{Err: ErrInvalidUTF8}
	}
	return res.line, nil
}
