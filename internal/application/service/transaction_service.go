package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/damon-houk/transaction-manager/internal/domain/entity"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
)

// TransactionService handles business logic for transactions
type TransactionService struct {
	repo   repository.TransactionRepository
	logger logger.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repository.TransactionRepository, log logger.Logger) *TransactionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TransactionService{
		repo:   repo,
		logger: log,
	}
}

// Exists reports whether a transaction with the id has been registered
func (s *TransactionService) Exists(ctx context.Context, id int) (bool, error) {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.logger.Error("Failed to check transaction existence", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return false, fmt.Errorf("failed to check transaction %d: %w", id, err)
	}

	return exists, nil
}

// CreateTransaction validates and stores a completed transaction
func (s *TransactionService) CreateTransaction(ctx context.Context, tx entity.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if err := s.repo.Store(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransaction) {
			s.logger.Warn("Duplicate transaction rejected", map[string]interface{}{
				"id": tx.ID(),
			})
			return err
		}

		s.logger.Error("Failed to store transaction", map[string]interface{}{
			"id":    tx.ID(),
			"error": err.Error(),
		})
		return fmt.Errorf("failed to store transaction %d: %w", tx.ID(), err)
	}

	s.logger.Info("Transaction created", map[string]interface{}{
		"id":     tx.ID(),
		"date":   tx.Date().Format("2006-01-02"),
		"amount": tx.Amount().StringFixed(entity.AmountScale),
	})

	return nil
}

// GetTransaction retrieves a transaction by id
func (s *TransactionService) GetTransaction(ctx context.Context, id int) (entity.Transaction, error) {
	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return entity.Transaction{}, err
		}

		s.logger.Error("Failed to retrieve transaction", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return entity.Transaction{}, fmt.Errorf("failed to retrieve transaction %d: %w", id, err)
	}

	return tx, nil
}
