package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"askbrooks/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Connector is a live session with the notebook service.
type Connector interface {
	Ask(ctx context.Context, notebookID, question string) (string, error)
	Close() error
}

// ConnectFunc constructs a new Connector. It may be slow and may fail.
type ConnectFunc func(ctx context.Context) (Connector, error)

type ClientState int

const (
	StateUninitialized ClientState = iota
	StateInitializing
	StateReady
)

func (s ClientState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

var errReleased = errors.New("client released during initialization")

// ClientManager owns the process-wide Connector. The connector is built on
// first use; concurrent first callers share a single construction and its
// result. Failures are not cached, so the next Acquire tries again.
type ClientManager struct {
	connect ConnectFunc
	logger  *zap.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu           sync.RWMutex
	client       Connector
	initializing bool
	// generation is bumped by Release so an initialization that finishes
	// afterwards knows not to publish its connector.
	generation uint64
}

func NewClientManager(connect ConnectFunc, logger *zap.Logger, m *metrics.Metrics) *ClientManager {
	return &ClientManager{connect: connect, logger: logger, metrics: m}
}

// Acquire returns the shared connector, constructing it if needed. If ctx ends
// while waiting, Acquire returns early but the construction carries on for the
// other waiters.
func (m *ClientManager) Acquire(ctx context.Context) (Connector, error) {
	m.mu.RLock()
	c := m.client
	m.mu.RUnlock()
	if c != nil {
		return c, nil
	}

	initCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan("connect", func() (interface{}, error) {
		return m.initialize(initCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Connector), nil
	case <-ctx.Done():
		return nil, unavailable(ctx.Err())
	}
}

func (m *ClientManager) initialize(ctx context.Context) (Connector, error) {
	m.mu.Lock()
	if m.client != nil {
		c := m.client
		m.mu.Unlock()
		return c, nil
	}
	m.initializing = true
	gen := m.generation
	m.mu.Unlock()

	start := time.Now()
	c, err := m.connect(ctx)
	m.metrics.ObserveConnectorInit(err, time.Since(start))

	m.mu.Lock()
	m.initializing = false
	if err == nil && gen != m.generation {
		m.mu.Unlock()
		if cerr := c.Close(); cerr != nil {
			m.logger.Warn("failed to close connector built during release", zap.Error(cerr))
		}
		return nil, unavailable(errReleased)
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("notebooklm client init failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, unavailable(err)
	}
	m.client = c
	m.mu.Unlock()

	m.logger.Info("notebooklm client initialized", zap.Duration("elapsed", time.Since(start)))
	return c, nil
}

// Release closes the connector, if any. Safe to call repeatedly.
func (m *ClientManager) Release(ctx context.Context) error {
	m.mu.Lock()
	c := m.client
	m.client = nil
	m.generation++
	m.mu.Unlock()

	if c == nil {
		return nil
	}
	m.logger.Info("closing notebooklm client")
	return c.Close()
}

// State reports where the manager is in its lifecycle.
func (m *ClientManager) State() ClientState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.client != nil:
		return StateReady
	case m.initializing:
		return StateInitializing
	default:
		return StateUninitialized
	}
}

func unavailable(err error) error {
	return &Error{
		Kind:   ErrServiceUnavailable,
		Detail: "Failed to initialize NotebookLM: " + err.Error(),
		Err:    err,
	}
}
