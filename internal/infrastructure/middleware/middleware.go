// internal/infrastructure/middleware/middleware.go
package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
	"github.com/google/uuid"
)

// Keys for context values
type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	lineNumberKey contextKey = "line_number"
)

// LineHandler handles one line of console input
type LineHandler interface {
	HandleLine(ctx context.Context, line string) (string, error)
}

// LineHandlerFunc adapts a function to the LineHandler interface
type LineHandlerFunc func(ctx context.Context, line string) (string, error)

// HandleLine calls f(ctx, line)
func (f LineHandlerFunc) HandleLine(ctx context.Context, line string) (string, error) {
	return f(ctx, line)
}

// Middleware wraps a LineHandler
type Middleware func(LineHandler) LineHandler

// Chain applies middlewares so that the first one is the outermost
func Chain(h LineHandler, middlewares ...Middleware) LineHandler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// NewSessionID generates a unique session ID
func NewSessionID() string {
	return uuid.New().String()
}

// SessionIDMiddleware adds the session ID and a running line number to the context
func SessionIDMiddleware(sessionID string) Middleware {
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	return func(next LineHandler) LineHandler {
		lineNumber := 0

		return LineHandlerFunc(func(ctx context.Context, line string) (string, error) {
			lineNumber++

			ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			ctx = context.WithValue(ctx, lineNumberKey, lineNumber)

			return next.HandleLine(ctx, line)
		})
	}
}

// LoggingMiddleware logs every line and the outcome of handling it
func LoggingMiddleware(log logger.Logger) Middleware {
	return func(next LineHandler) LineHandler {
		return LineHandlerFunc(func(ctx context.Context, line string) (string, error) {
			startTime := time.Now()

			sessionID := GetSessionID(ctx)
			lineNumber := GetLineNumber(ctx)

			log.Debug("Line received", map[string]interface{}{
				"session_id":  sessionID,
				"line_number": lineNumber,
				"length":      len(line),
			})

			// Call next handler
			response, err := next.HandleLine(ctx, line)

			duration := time.Since(startTime)
			if err != nil {
				log.Error("Line handling failed", map[string]interface{}{
					"session_id":  sessionID,
					"line_number": lineNumber,
					"duration_ms": duration.Milliseconds(),
					"error":       err.Error(),
				})
				return response, err
			}

			log.Debug("Response sent", map[string]interface{}{
				"session_id":      sessionID,
				"line_number":     lineNumber,
				"duration_ms":     duration.Milliseconds(),
				"response_length": len(response),
			})

			return response, nil
		})
	}
}

// PanicError is returned by RecoveryMiddleware when a handler panics
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while handling line: %v", e.Value)
}

// RecoveryMiddleware converts a panic in the handler into a *PanicError
func RecoveryMiddleware(log logger.Logger) Middleware {
	return func(next LineHandler) LineHandler {
		return LineHandlerFunc(func(ctx context.Context, line string) (response string, err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					log.Error("Recovered from panic", map[string]interface{}{
						"session_id": GetSessionID(ctx),
						"panic":      fmt.Sprint(r),
						"stack":      string(stack),
					})
					response = ""
					err = &PanicError{Value: r, Stack: stack}
				}
			}()

			return next.HandleLine(ctx, line)
		})
	}
}

// GetSessionID retrieves the session ID from context
func GetSessionID(ctx context.Context) string {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	if !ok || sessionID == "" {
		return "unknown"
	}
	return sessionID
}

// GetLineNumber retrieves the 1-based input line number from context
func GetLineNumber(ctx context.Context) int {
	n, _ := ctx.Value(lineNumberKey).(int)
	return n
}
