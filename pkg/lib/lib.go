package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/method"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/optimizer"
	"github.com/slok/blendeval/internal/optimizer/fake"
	"github.com/slok/blendeval/internal/optimizer/remote"
	"github.com/slok/blendeval/internal/storage"
	"github.com/slok/blendeval/internal/storage/sqlite"
)

const (
	defaultDataDir = ".blendeval"
	defaultDBFile  = "blendeval.db"
)

// Config configures the SDK client.
//
// An empty Config{} uses ~/.blendeval/blendeval.db for storage, the built-in
// methods and requires OptimizerURL unless Optimizer is [OptimizerFake].
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.blendeval/blendeval.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Optimizer selects the optimizer implementation.
	// Default: [OptimizerRemote].
	Optimizer OptimizerType

	// OptimizerURL is the base URL of the remote optimizer.
	// Only used when Optimizer is [OptimizerRemote].
	OptimizerURL string

	// Methods are the optimizer methods, in fan-out order.
	// Default: linear, genetic, pso and annealing.
	Methods []Method
}

func (c *Config) defaults() error {
	if c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = filepath.Join(home, defaultDataDir, defaultDBFile)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Optimizer == "" {
		c.Optimizer = OptimizerRemote
	}

	return nil
}

// Client is the main SDK entry point to orchestrate optimization tasks programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo      storage.Repository
	optimizer optimizer.Client
	methods   *method.Registry
	logger    log.Logger
	closeFn   func() error
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{OptimizerURL: "http://optimizer:8000"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	methods, err := newRegistry(cfg.Methods)
	if err != nil {
		return nil, mapError(err)
	}

	opt, err := newOptimizer(cfg)
	if err != nil {
		return nil, mapError(err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		repo:      repo,
		optimizer: opt,
		methods:   methods,
		logger:    cfg.Logger,
		closeFn:   repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

func newOptimizer(cfg Config) (optimizer.Client, error) {
	switch cfg.Optimizer {
	case OptimizerRemote:
		if cfg.OptimizerURL == "" {
			return nil, fmt.Errorf("optimizer URL is required: %w", model.ErrNotValid)
		}
		return remote.NewClient(remote.ClientConfig{
			BaseURL: cfg.OptimizerURL,
			Logger:  cfg.Logger,
		})
	case OptimizerFake:
		return fake.NewOptimizer(fake.OptimizerConfig{
			Logger: cfg.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported optimizer type: %s: %w", cfg.Optimizer, model.ErrNotValid)
	}
}

func newRegistry(ms []Method) (*method.Registry, error) {
	if len(ms) == 0 {
		return method.Default(), nil
	}

	descriptors := make([]model.MethodDescriptor, 0, len(ms))
	for _, m := range ms {
		descriptors = append(descriptors, toInternalMethod(m))
	}
	return method.NewRegistry(descriptors)
}
