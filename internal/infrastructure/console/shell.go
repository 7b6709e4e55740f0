// Package console runs the interactive read-process-print loop.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/middleware"
)

const (
	// ExitCommand ends the session; it never reaches the line handler
	ExitCommand = "exit"

	// UnexpectedErrorMessage is shown when handling a line fails unexpectedly
	UnexpectedErrorMessage = "an unexpected error occurred\n"

	// MaxLineLength is the longest input line handed to the line handler.
	// Longer lines are discarded and reported as unexpected errors.
	MaxLineLength = 64 * 1024
)

// ErrLineTooLong is logged when an input line exceeds MaxLineLength
var ErrLineTooLong = errors.New("input line too long")

// inputLine is one line read from the input stream, or the read error that
// ended the stream
type inputLine struct {
	text    string
	tooLong bool
	err     error
}

// Shell reads trimmed lines from an input stream, hands them to a line
// handler and writes the responses back
type Shell struct {
	reader  *bufio.Reader
	out     io.Writer
	handler middleware.LineHandler
	logger  logger.Logger
}

// NewShell creates a shell over the given streams
func NewShell(in io.Reader, out io.Writer, handler middleware.LineHandler, log logger.Logger) *Shell {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Shell{
		reader:  bufio.NewReader(in),
		out:     out,
		handler: handler,
		logger:  log,
	}
}

// Run processes lines until the exit command, end of input or context
// cancellation. Cancellation is noticed even while waiting for input.
// Handler failures and over-long lines are reported to the user and the
// session continues; only read and write failures end Run with an error.
func (s *Shell) Run(ctx context.Context) error {
	s.logger.Info("Session started", nil)

	lines := make(chan inputLine)
	done := make(chan struct{})
	defer close(done)

	go s.readLines(lines, done)

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Session cancelled", nil)
			return nil
		}

		var (
			in inputLine
			ok bool
		)

		select {
		case <-ctx.Done():
			s.logger.Info("Session cancelled", nil)
			return nil
		case in, ok = <-lines:
		}

		if !ok {
			s.logger.Info("Input closed", nil)
			return nil
		}

		if in.err != nil {
			return fmt.Errorf("failed to read input: %w", in.err)
		}

		response, exit := s.handle(ctx, in)
		if exit {
			s.logger.Info("Session ended", nil)
			return nil
		}

		if _, err := io.WriteString(s.out, response); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

// handle turns one input line into the response text, or reports that the
// session should end
func (s *Shell) handle(ctx context.Context, in inputLine) (string, bool) {
	if in.tooLong {
		s.logger.Error("Unexpected error while processing input", map[string]interface{}{
			"error":      ErrLineTooLong.Error(),
			"max_length": MaxLineLength,
		})
		return UnexpectedErrorMessage, false
	}

	line := strings.TrimSpace(in.text)

	if strings.EqualFold(line, ExitCommand) {
		return "", true
	}

	response, err := s.handler.HandleLine(ctx, line)
	if err != nil {
		s.logger.Error("Unexpected error while processing input", map[string]interface{}{
			"error": err.Error(),
		})
		return UnexpectedErrorMessage, false
	}

	return response, false
}

// readLines sends every input line on lines until the input ends or done
// is closed. Bytes past MaxLineLength are dropped and the line is flagged.
func (s *Shell) readLines(lines chan<- inputLine, done <-chan struct{}) {
	defer close(lines)

	send := func(in inputLine) bool {
		select {
		case lines <- in:
			return true
		case <-done:
			return false
		}
	}

	var (
		buf     []byte
		tooLong bool
	)

	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				send(inputLine{err: err})
			}
			return
		}

		if !tooLong {
			if len(buf)+len(chunk) > MaxLineLength {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		if isPrefix {
			continue
		}

		if !send(inputLine{text: string(buf), tooLong: tooLong}) {
			return
		}

		buf = nil
		tooLong = false
	}
}
