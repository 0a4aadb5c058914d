package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/store/memory"
	"financas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := applyIncomes(ctx, result.Store, config.MemberIncomes); err != nil {
		result.Close()
		return nil, err
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	result := &BackendResult{
		Store: repo,
		Ready: repo.Ping,
	}

	// AMQP is optional; without it the worker falls back to periodic refreshes.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change notifications", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = amqpClient
		}
	}

	result.Cleanup = func() error {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return repo.Close()
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)

	return &BackendResult{
		Store: store,
		Ready: func(context.Context) error { return nil },
	}, nil
}

// applyIncomes writes configured incomes over the stored members, creating a
// member when the id is unknown.
func applyIncomes(ctx context.Context, store Backend, incomes map[string]core.Money) error {
	if len(incomes) == 0 {
		return nil
	}
	members, err := store.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	byID := make(map[string]core.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	ids := make([]string, 0, len(incomes))
	for id := range incomes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			m = core.Member{ID: id, Name: "Parceiro " + strings.ToUpper(id)}
		}
		m.Income = incomes[id]
		if err := store.UpsertMember(ctx, m); err != nil {
			return fmt.Errorf("set income for member %s: %w", id, err)
		}
	}
	return nil
}
