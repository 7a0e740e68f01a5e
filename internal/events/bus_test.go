package events

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/slateboard/slateboard-go/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type capturingConsumer struct {
	name string
	mu   sync.Mutex
	got  []Event
	done chan struct{}
	want int
	fail error
}

func newCapturingConsumer(name string, want int) *capturingConsumer {
	return &capturingConsumer{name: name, want: want, done: make(chan struct{})}
}

func (c *capturingConsumer) Name() string { return c.name }

func (c *capturingConsumer) ProcessEvent(event Event) error {
	if c.fail != nil {
		return c.fail
	}
	c.mu.Lock()
	c.got = append(c.got, event)
	if len(c.got) == c.want {
		close(c.done)
	}
	c.mu.Unlock()
	return nil
}

func (c *capturingConsumer) events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.got...)
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for consumer")
	}
}

func TestBus_DeliversToConsumer(t *testing.T) {
	bus := NewBus(nil)
	defer func() { require.NoError(t, bus.Shutdown(time.Second)) }()

	consumer := newCapturingConsumer("view", 2)
	require.NoError(t, bus.RegisterConsumer(consumer))

	assert.True(t, bus.TryPublish(FrameStatusEvent{
		ProjectID: "p1",
		FrameID:   "f1",
		Status:    model.StatusDone,
		Source:    OriginLocal,
		Timestamp: time.Now(),
	}))
	assert.True(t, bus.TryPublish(ScheduleChangedEvent{
		ProjectID:  "p1",
		ScheduleID: "s1",
		Source:     OriginRemote,
		Timestamp:  time.Now(),
	}))

	waitDone(t, consumer.done)
	got := consumer.events()
	require.Len(t, got, 2)

	names := map[string]Origin{}
	for _, event := range got {
		names[event.Name()] = event.Origin()
	}
	assert.Equal(t, OriginLocal, names["frame-status-updated"])
	assert.Equal(t, OriginRemote, names["schedule-changed"])

	stats := bus.GetStats()
	assert.Equal(t, uint64(2), stats.EventsReceived)
	assert.Equal(t, uint64(2), stats.EventsProcessed)
}

func TestBus_PublishWithoutConsumers(t *testing.T) {
	bus := NewBus(nil)
	assert.False(t, bus.TryPublish(FramesReloadedEvent{ProjectID: "p1"}))
	require.NoError(t, bus.Shutdown(time.Second))
}

func TestBus_DuplicateConsumerRejected(t *testing.T) {
	bus := NewBus(nil)
	defer func() { require.NoError(t, bus.Shutdown(time.Second)) }()

	require.NoError(t, bus.RegisterConsumer(newCapturingConsumer("view", 1)))
	assert.Error(t, bus.RegisterConsumer(newCapturingConsumer("view", 1)))
}

func TestBus_ConsumerErrorCounted(t *testing.T) {
	bus := NewBus(nil)
	defer func() { require.NoError(t, bus.Shutdown(time.Second)) }()

	failing := newCapturingConsumer("failing", 1)
	failing.fail = fmt.Errorf("boom")
	require.NoError(t, bus.RegisterConsumer(failing))

	require.True(t, bus.TryPublish(FramesReloadedEvent{ProjectID: "p1", Source: OriginLocal}))

	require.Eventually(t, func() bool {
		return bus.GetStats().ConsumerErrors == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(0), bus.GetStats().EventsProcessed)
}

func TestBus_PublishAfterShutdown(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.RegisterConsumer(newCapturingConsumer("view", 1)))
	require.NoError(t, bus.Shutdown(time.Second))

	assert.False(t, bus.TryPublish(FramesReloadedEvent{ProjectID: "p1"}))
}
