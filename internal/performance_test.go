package internal

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/damon-houk/transaction-manager/internal/application/dialogue"
	"github.com/damon-houk/transaction-manager/internal/application/service"
	"github.com/damon-houk/transaction-manager/internal/domain/repository"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/codec"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/config"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/db"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
)

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	// Performance test configuration
	numTransactions := 1000
	sessions := 4

	for _, backend := range []string{config.BackendMemory, config.BackendBadger, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			startTime := time.Now()

			wg := sync.WaitGroup{}
			wg.Add(sessions)

			txPerSession := numTransactions / sessions
			errs := make(chan error, sessions)

			// Every session owns its processor and store, matching the
			// single-session design of the dialogue
			for i := 0; i < sessions; i++ {
				go func(sessionID int) {
					defer wg.Done()

					repo, closeRepo, err := db.OpenTransactionRepository(config.StoreConfig{Backend: backend})
					if err != nil {
						errs <- err
						return
					}
					defer closeRepo()

					if err := runSession(repo, txPerSession, int64(sessionID)); err != nil {
						errs <- fmt.Errorf("session %d: %w", sessionID, err)
					}
				}(i)
			}

			wg.Wait()
			close(errs)
			for err := range errs {
				t.Error(err)
			}

			duration := time.Since(startTime)

			// Calculate throughput
			throughput := float64(numTransactions) / duration.Seconds()
			t.Logf("%s: %d add+get dialogues in %v (%.2f tx/sec)",
				backend, numTransactions, duration, throughput)
		})
	}
}

// runSession drives count add dialogues followed by a get for each id
func runSession(repo repository.TransactionRepository, count int, seed int64) error {
	ctx := context.Background()
	nop := logger.NewNopLogger()
	rng := rand.New(rand.NewSource(seed))
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	processor := dialogue.NewProcessor(
		service.NewTransactionService(repo, nop),
		codec.NewJSONSerializer(),
		dialogue.WithClock(func() time.Time { return now }),
		dialogue.WithLogger(nop),
	)
	state := &dialogue.State{}

	send := func(input string) (string, error) {
		return processor.Process(ctx, state, input)
	}

	for i := 1; i <= count; i++ {
		date := now.AddDate(0, 0, -rng.Intn(365)).Format("02.01.2006")
		amount := fmt.Sprintf("%d.%02d", rng.Intn(10000), rng.Intn(100))

		for _, input := range []string{"add", strconv.Itoa(i), date, amount} {
			if _, err := send(input); err != nil {
				return err
			}
		}
		if state.Step != dialogue.StepIdle {
			return fmt.Errorf("add dialogue for id %d did not complete", i)
		}
	}

	for i := 1; i <= count; i++ {
		if _, err := send("get"); err != nil {
			return err
		}
		response, err := send(strconv.Itoa(i))
		if err != nil {
			return err
		}
		if state.Step != dialogue.StepIdle {
			return fmt.Errorf("get dialogue for id %d failed: %q", i, response)
		}
	}

	stored, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if stored != count {
		return fmt.Errorf("expected %d stored transactions, got %d", count, stored)
	}

	return nil
}
