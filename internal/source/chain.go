package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/internal/logging"
	"github.com/huangsam/runmatrix/schema"
)

// Opener lazily creates one link of a Chain.
type Opener struct {
	Name string
	Open func() (contract.RunSource, error)
}

// Static wraps an existing source as an Opener.
func Static(src contract.RunSource) Opener {
	return Opener{Name: src.Name(), Open: func() (contract.RunSource, error) { return src, nil }}
}

// Chain tries its sources in order and serves the first non-empty batch.
// Failures are logged and the next source is tried.
type Chain struct {
	openers []Opener
	log     *slog.Logger

	mu     sync.Mutex
	served string
}

var _ contract.RunSource = &Chain{} // Compile-time check

// NewChain creates a fallback chain over openers.
func NewChain(openers ...Opener) *Chain {
	return &Chain{openers: openers, log: logging.New("source")}
}

// NewAutoChain builds the default chain: the local SQLite database when its
// file exists, then CSV exports, then sample data.
func NewAutoChain(cfg *contract.Config) *Chain {
	opts := FetchOptions{Lookback: cfg.Lookback, Owners: cfg.Owners}
	dbPath := cfg.SourceDBConnect
	if dbPath == "" {
		dbPath = contract.GetDBFilePath()
	}
	return NewChain(
		Opener{Name: string(schema.SQLiteSource), Open: func() (contract.RunSource, error) {
			if _, err := os.Stat(dbPath); err != nil {
				return nil, fmt.Errorf("no database at %s: %w", dbPath, err)
			}
			return OpenSQLStore(schema.SQLiteBackend, dbPath, opts)
		}},
		Static(NewCSVSource(cfg.CSVDirs)),
		Static(NewSampleSource(cfg.SampleSeed, cfg.SampleRuns)),
	)
}

// Name returns the source that served the last fetch, or "auto" before any fetch.
func (c *Chain) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.served == "" {
		return string(schema.AutoSource)
	}
	return c.served
}

// Fetch returns the first non-empty batch. When every source is empty the
// last empty batch is returned; when every source fails the errors are joined.
func (c *Chain) Fetch(ctx context.Context) (*schema.Batch, error) {
	var errs []error
	var fallback *schema.Batch
	var fallbackName string

	for _, o := range c.openers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := c.fetchOne(ctx, o)
		if err != nil {
			c.log.Warn("Run source unavailable, trying next", "source", o.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", o.Name, err))
			continue
		}
		if batch.Empty() {
			c.log.Info("Run source returned no runs, trying next", "source", o.Name)
			if fallback == nil {
				fallback, fallbackName = batch, o.Name
			}
			continue
		}
		c.setServed(o.Name)
		c.log.Debug("Run source served batch", "source", o.Name, "rows", batch.Len())
		return batch, nil
	}

	if fallback != nil {
		c.setServed(fallbackName)
		return fallback, nil
	}
	return nil, fmt.Errorf("no run source available: %w", errors.Join(errs...))
}

func (c *Chain) fetchOne(ctx context.Context, o Opener) (*schema.Batch, error) {
	src, err := o.Open()
	if err != nil {
		return nil, err
	}
	if closer, ok := src.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	return src.Fetch(ctx)
}

func (c *Chain) setServed(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.served = name
}
