package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/damon-houk/transaction-manager/internal/application/dialogue"
	"github.com/damon-houk/transaction-manager/internal/application/service"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/codec"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/db"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	lines []string
	fail  map[string]error
}

func (h *recordingHandler) HandleLine(ctx context.Context, line string) (string, error) {
	h.lines = append(h.lines, line)
	if err, ok := h.fail[line]; ok {
		return "", err
	}
	return "<" + line + ">", nil
}

func TestShellTrimsAndStopsOnExit(t *testing.T) {
	handler := &recordingHandler{}
	var out bytes.Buffer

	shell := NewShell(strings.NewReader("  add \n\tget\nEXIT\nnever\n"), &out, handler, logger.NewNopLogger())

	require.NoError(t, shell.Run(context.Background()))
	assert.Equal(t, []string{"add", "get"}, handler.lines)
	assert.Equal(t, "<add><get>", out.String())
}

func TestShellStopsAtEndOfInput(t *testing.T) {
	handler := &recordingHandler{}
	var out bytes.Buffer

	shell := NewShell(strings.NewReader("one\ntwo"), &out, handler, logger.NewNopLogger())

	require.NoError(t, shell.Run(context.Background()))
	assert.Equal(t, []string{"one", "two"}, handler.lines)
}

func TestShellReportsUnexpectedErrorsAndContinues(t *testing.T) {
	handler := &recordingHandler{fail: map[string]error{"boom": errors.New("store unavailable")}}
	var out, logs bytes.Buffer

	shell := NewShell(strings.NewReader("boom\nafter\nexit\n"), &out, handler, logger.NewJSONLogger(&logs, logger.InfoLevel))

	require.NoError(t, shell.Run(context.Background()))
	assert.Equal(t, UnexpectedErrorMessage+"<after>", out.String())
	assert.Contains(t, logs.String(), "store unavailable")
}

func TestShellHonoursCancelledContext(t *testing.T) {
	handler := &recordingHandler{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shell := NewShell(strings.NewReader("add\n"), &bytes.Buffer{}, handler, logger.NewNopLogger())

	require.NoError(t, shell.Run(ctx))
	assert.Empty(t, handler.lines)
}

func TestShellCancelWhileWaitingForInput(t *testing.T) {
	handler := &recordingHandler{}
	reader, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	shell := NewShell(reader, &bytes.Buffer{}, handler, logger.NewNopLogger())

	result := make(chan error, 1)
	go func() { result <- shell.Run(ctx) }()

	// The write returns once the line is consumed; the pipe then stays empty
	_, err := io.WriteString(writer, "add\n")
	require.NoError(t, err)
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
}

func TestShellRecoversFromOverlongLine(t *testing.T) {
	handler := &recordingHandler{}
	var out, logs bytes.Buffer

	input := strings.Repeat("x", MaxLineLength+6*1024) + "\nadd\nexit\n"
	shell := NewShell(strings.NewReader(input), &out, handler, logger.NewJSONLogger(&logs, logger.InfoLevel))

	require.NoError(t, shell.Run(context.Background()))
	assert.Equal(t, []string{"add"}, handler.lines)
	assert.Equal(t, UnexpectedErrorMessage+"<add>", out.String())
	assert.Contains(t, logs.String(), ErrLineTooLong.Error())
}

func TestShellAcceptsLineAtLimit(t *testing.T) {
	handler := &recordingHandler{}
	line := strings.Repeat("y", MaxLineLength)

	shell := NewShell(strings.NewReader(line+"\n"), io.Discard, handler, logger.NewNopLogger())

	require.NoError(t, shell.Run(context.Background()))
	require.Len(t, handler.lines, 1)
	assert.Len(t, handler.lines[0], MaxLineLength)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestShellWriteFailure(t *testing.T) {
	shell := NewShell(strings.NewReader("add\n"), failingWriter{}, &recordingHandler{}, logger.NewNopLogger())

	err := shell.Run(context.Background())
	assert.ErrorContains(t, err, "failed to write response")
}

func TestShellDialogueSession(t *testing.T) {
	nop := logger.NewNopLogger()
	repo := db.NewMemoryTransactionRepository()
	processor := dialogue.NewProcessor(
		service.NewTransactionService(repo, nop),
		codec.NewJSONSerializer(),
		dialogue.WithClock(func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }),
		dialogue.WithLogger(nop),
	)

	handler := middleware.Chain(
		middleware.LineHandlerFunc(processor.Bind(&dialogue.State{})),
		middleware.SessionIDMiddleware("test"),
		middleware.RecoveryMiddleware(nop),
	)

	input := strings.Join([]string{"add", "5", "01.01.2024", "10.00", "get", "5", "Exit"}, "\n")
	var out bytes.Buffer

	require.NoError(t, NewShell(strings.NewReader(input), &out, handler, nop).Run(context.Background()))

	expected := dialogue.PromptID +
		dialogue.PromptDate +
		dialogue.PromptAmount +
		dialogue.ResponseOK +
		dialogue.PromptID +
		`{"id":5,"transactionDate":"2024-01-01","amount":10.00}` + "\n" + dialogue.ResponseOK
	assert.Equal(t, expected, out.String())
}
