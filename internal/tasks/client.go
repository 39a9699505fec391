// Package tasks runs the background enrichment queue. Definition
// translation happens here, off the request path, so a saved word is
// usable immediately and fills in its translation when the worker gets
// to it.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the backlite dispatcher and its sidecar SQLite database.
// Keeping the queue out of the main database means a burst of
// enrichment work never contends with lookups or reviews.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.RWMutex
	started bool
}

// sidecarPath derives the queue database path from the main one:
// vocadex.db gets vocadex-tasks.db next to it.
func sidecarPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// NewClient opens the sidecar database and prepares the dispatcher.
// Queues still have to be registered and Start called before any task
// runs.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	db, err := sql.Open("sqlite3", sidecarPath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open enrichment queue database: %w", err)
	}

	// One connection per worker plus headroom for enqueues.
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create enrichment queue: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("install enrichment queue schema: %w", err)
	}

	return &Client{
		client: client,
		db:     db,
		config: cfg,
	}, nil
}

// Register wires queues into the dispatcher. Must happen before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start launches the workers. Non-blocking; run it in a goroutine and
// use Stop for shutdown. A second call is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	log.Printf("[TASK] Enrichment queue started, %d workers", c.config.Workers)
	c.client.Start(ctx)
}

// Stop drains the workers, waiting for in-flight tasks up to the
// context deadline. Reports whether everything finished in time; a
// task cut off here is retried on the next run, so a false result is
// not data loss.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	if !c.started {
		c.mu.RUnlock()
		return true
	}
	c.mu.RUnlock()

	done := c.client.Stop(ctx)
	if done {
		log.Println("[TASK] Enrichment queue drained")
	} else {
		log.Println("[TASK] Enrichment queue stopped before all tasks finished")
	}
	return done
}

// Close releases the sidecar database. Call after Stop.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Add begins enqueueing tasks; call Save on the returned op.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.client.Add(tasks...)
}

// queueLogger routes backlite's log lines through the standard logger
// under the same prefix the task processors use.
type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
