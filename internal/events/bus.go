package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slateboard/slateboard-go/internal/logging"
)

// Config holds bus configuration.
type Config struct {
	BufferSize int
	Workers    int
}

// DefaultConfig returns the default bus configuration. The buffer is
// sized for bursts of remote updates arriving while the UI thread is
// busy.
func DefaultConfig() *Config {
	return &Config{
		BufferSize: 1024,
		Workers:    2,
	}
}

// Bus delivers events to consumers on a small worker pool.
type Bus struct {
	eventChan chan Event
	workers   int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
	mu      sync.Mutex

	consumers []Consumer

	stats struct {
		received  atomic.Uint64
		processed atomic.Uint64
		dropped   atomic.Uint64
		errors    atomic.Uint64
	}

	logger *slog.Logger
}

// NewBus creates an event bus. Workers start when the first consumer
// registers.
func NewBus(config *Config) *Bus {
	if config == nil {
		config = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	bus := &Bus{
		eventChan: make(chan Event, config.BufferSize),
		workers:   config.Workers,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logging.ForService("events"),
	}
	bus.logger.Debug("event bus created",
		"buffer_size", config.BufferSize,
		"workers", config.Workers)
	return bus
}

// RegisterConsumer adds a consumer. Consumer names must be unique.
func (b *Bus) RegisterConsumer(consumer Consumer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.consumers {
		if existing.Name() == consumer.Name() {
			return fmt.Errorf("consumer %s already registered", consumer.Name())
		}
	}
	b.consumers = append(b.consumers, consumer)
	b.logger.Info("registered event consumer", "consumer", consumer.Name())

	if len(b.consumers) == 1 {
		b.start()
	}
	return nil
}

// TryPublish offers an event without blocking. Returns false when the
// bus is stopped, has no consumers, or the buffer is full.
func (b *Bus) TryPublish(event Event) bool {
	if b == nil || !b.running.Load() {
		return false
	}

	b.mu.Lock()
	hasConsumers := len(b.consumers) > 0
	b.mu.Unlock()
	if !hasConsumers {
		return false
	}

	select {
	case b.eventChan <- event:
		b.stats.received.Add(1)
		return true
	default:
		b.stats.dropped.Add(1)
		b.logger.Debug("event dropped due to full buffer",
			"event", event.Name(),
			"project", event.Project())
		return false
	}
}

func (b *Bus) start() {
	if b.running.Swap(true) {
		return
	}
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}
}

func (b *Bus) worker(id int) {
	defer b.wg.Done()
	logger := b.logger.With("worker_id", id)

	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventChan:
			if !ok {
				return
			}
			b.processEvent(event, logger)
		}
	}
}

func (b *Bus) processEvent(event Event, logger *slog.Logger) {
	b.mu.Lock()
	consumers := make([]Consumer, len(b.consumers))
	copy(consumers, b.consumers)
	b.mu.Unlock()

	for _, consumer := range consumers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.stats.errors.Add(1)
					logger.Error("consumer panicked",
						"consumer", consumer.Name(),
						"panic", r,
						"event", event.Name())
				}
			}()

			if err := consumer.ProcessEvent(event); err != nil {
				b.stats.errors.Add(1)
				logger.Error("consumer error",
					"consumer", consumer.Name(),
					"error", err,
					"event", event.Name())
				return
			}
			b.stats.processed.Add(1)
		}()
	}
}

// Shutdown stops accepting events and waits for in-flight processing,
// up to timeout.
func (b *Bus) Shutdown(timeout time.Duration) error {
	if b == nil || !b.running.Swap(false) {
		return nil
	}
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Debug("event bus shutdown complete")
		return nil
	case <-time.After(timeout):
		b.logger.Warn("event bus shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}

// GetStats returns a snapshot of the bus counters.
func (b *Bus) GetStats() BusStats {
	if b == nil {
		return BusStats{}
	}
	return BusStats{
		EventsReceived:  b.stats.received.Load(),
		EventsProcessed: b.stats.processed.Load(),
		EventsDropped:   b.stats.dropped.Load(),
		ConsumerErrors:  b.stats.errors.Load(),
	}
}
