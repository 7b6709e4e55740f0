// Package dialogue implements the add/get dialogue that turns successive
// input lines into registered transactions.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/damon-houk/transaction-manager/internal/domain/validation"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
)

// TransactionService is the part of the transaction service the dialogue needs
type TransactionService interface {
	Exists(ctx context.Context, id int) (bool, error)
	CreateTransaction(ctx context.Context, tx entity.Transaction) error
	GetTransaction(ctx context.Context, id int) (entity.Transaction, error)
}

// Serializer renders a stored transaction for the get response
type Serializer interface {
	Serialize(tx entity.Transaction) (string, error)
}

// Processor advances a dialogue State one input line at a time.
// It holds no per-session state itself.
type Processor struct {
	service    TransactionService
	serializer Serializer
	logger     logger.Logger
	now        func() time.Time
}

// Option configures a Processor
type Option func(*Processor)

// WithClock replaces the clock used to reject future dates
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithLogger sets the processor logger
func WithLogger(log logger.Logger) Option {
	return func(p *Processor) {
		p.logger = log
	}
}

// NewProcessor creates a processor over the given service and serializer
func NewProcessor(service TransactionService, serializer Serializer, opts ...Option) *Processor {
	p := &Processor{
		service:    service,
		serializer: serializer,
		logger:     logger.GetDefaultLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process consumes one line of input and returns the response for it.
// User mistakes are reported in the response; a non-nil error means an
// unexpected failure and leaves the dialogue step unchanged.
func (p *Processor) Process(ctx context.Context, state *State, input string) (string, error) {
	from := state.Step

	var (
		response string
		err      error
	)

	switch state.Step {
	case StepIdle:
		response = p.handleCommand(state, input)
	case StepAddID:
		response, err = p.handleAddID(ctx, state, input)
	case StepAddDate:
		response = p.handleAddDate(state, input)
	case StepAddAmount:
		response, err = p.handleAddAmount(ctx, state, input)
	case StepGet:
		response, err = p.handleGet(ctx, state, input)
	default:
		err = fmt.Errorf("unknown dialogue step: %d", state.Step)
	}

	if err != nil {
		return "", err
	}

	if from != state.Step {
		p.logger.Debug("Dialogue step changed", map[string]interface{}{
			"from": from.String(),
			"to":   state.Step.String(),
		})
	}

	return response, nil
}

// Bind returns a line handler that drives the given state
func (p *Processor) Bind(state *State) func(ctx context.Context, input string) (string, error) {
	return func(ctx context.Context, input string) (string, error) {
		return p.Process(ctx, state, input)
	}
}

func (p *Processor) handleCommand(state *State, input string) string {
	switch {
	case strings.EqualFold(input, CommandAdd):
		state.Step = StepAddID
		state.Pending = entity.NewTransactionBuilder()
		return PromptID
	case strings.EqualFold(input, CommandGet):
		state.Step = StepGet
		return PromptID
	default:
		p.logger.Debug("Unknown command", map[string]interface{}{
			"input": input,
		})
		return ResponseUnknownCommand
	}
}

func (p *Processor) handleAddID(ctx context.Context, state *State, input string) (string, error) {
	id, err := validation.ParseID(input)
	if err != nil {
		p.rejected(state, "id", input, err)
		return errorResponse(err.Error(), PromptID), nil
	}

	exists, err := p.service.Exists(ctx, id)
	if err != nil {
		return "", err
	}

	if exists {
		p.rejected(state, "id", input, repository.ErrDuplicateTransaction)
		return errorResponse(MessageDuplicateID, PromptID), nil
	}

	p.pending(state).SetID(id)
	state.Step = StepAddDate
	return PromptDate, nil
}

func (p *Processor) handleAddDate(state *State, input string) string {
	date, err := validation.ParseDate(input, p.now())
	if err != nil {
		p.rejected(state, "date", input, err)
		return errorResponse(err.Error(), PromptDate)
	}

	p.pending(state).SetDate(date)
	state.Step = StepAddAmount
	return PromptAmount
}

func (p *Processor) handleAddAmount(ctx context.Context, state *State, input string) (string, error) {
	amount, err := validation.ParseAmount(input)
	if err != nil {
		p.rejected(state, "amount", input, err)
		return errorResponse(err.Error(), PromptAmount), nil
	}

	builder := p.pending(state)
	builder.SetAmount(amount)

	tx, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to complete transaction: %w", err)
	}

	if err := p.service.CreateTransaction(ctx, tx); err != nil {
		return "", err
	}

	state.reset()
	return ResponseOK, nil
}

func (p *Processor) handleGet(ctx context.Context, state *State, input string) (string, error) {
	id, err := validation.ParseID(input)
	if err != nil {
		p.rejected(state, "id", input, err)
		return errorResponse(err.Error(), PromptID), nil
	}

	tx, err := p.service.GetTransaction(ctx, id)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		p.rejected(state, "id", input, err)
		return errorResponse(MessageNotFound, PromptID), nil
	}
	if err != nil {
		return "", err
	}

	serialized, err := p.serializer.Serialize(tx)
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction %d: %w", id, err)
	}

	state.reset()
	return serialized + "\n" + ResponseOK, nil
}

// pending returns the in-flight builder, creating one if the state was
// constructed directly in an add step
func (p *Processor) pending(state *State) *entity.TransactionBuilder {
	if state.Pending == nil {
		state.Pending = entity.NewTransactionBuilder()
	}
	return state.Pending
}

// rejected logs an input that re-prompts, along with the step it arrived
// in and the id of the half-built transaction when one is known
func (p *Processor) rejected(state *State, field, input string, reason error) {
	fields := map[string]interface{}{
		"step":   state.Step.String(),
		"field":  field,
		"input":  input,
		"reason": reason.Error(),
	}

	if state.Pending != nil {
		if id, ok := state.Pending.ID(); ok {
			fields["pending_id"] = id
		}
	}

	p.logger.Debug("Input rejected", fields)
}
