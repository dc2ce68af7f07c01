// Package events is the in-process channel between the completion tracker,
// the reminder dispatcher and whoever renders alerts. Subscribers own a
// buffered channel and must Close their subscription when done.
package events

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TopicTaskCompleted       = "babymind.task.completed"
	TopicPointsAwarded       = "babymind.points.awarded"
	TopicReminderDue         = "babymind.reminder.due"
	TopicAchievementUnlocked = "babymind.achievement.unlocked"

	// Source is the CloudEvents source of every event published here
	Source = "babymind"

	defaultBuffer = 32
)

// ErrDropped is returned by Publish when at least one subscriber's buffer was full
var ErrDropped = errors.New("event dropped by slow subscriber")

// Bus fans events out to topic subscribers
type Bus struct {
	mu      sync.RWMutex
	subs    map[string]map[*Subscription]struct{}
	logger  *zap.Logger
	dropped atomic.Uint64
	buffer  int
}

// Subscription receives events for one topic on C until closed
type Subscription struct {
	C     <-chan cloudevents.Event
	topic string
	ch    chan cloudevents.Event
	bus   *Bus
	once  sync.Once
}

// NewBus creates a bus. A nil logger disables logging.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[string]map[*Subscription]struct{}),
		logger: logger,
		buffer: defaultBuffer,
	}
}

// Subscribe registers interest in a topic
func (b *Bus) Subscribe(topic string) *Subscription {
	ch := make(chan cloudevents.Event, b.buffer)
	sub := &Subscription{C: ch, topic: topic, ch: ch, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}
	return sub
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.topic], s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Publish wraps data in a CloudEvent and delivers it to every subscriber of
// topic without blocking. Full subscriber buffers drop the event and
// Publish returns ErrDropped so the caller can retry later.
func (b *Bus) Publish(topic, subject string, data any) error {
	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetType(topic)
	event.SetSource(Source)
	event.SetSubject(subject)
	event.SetTime(time.Now())
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return fmt.Errorf("failed to set event data: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	dropped := 0
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- event:
		default:
			dropped++
			b.dropped.Add(1)
			b.logger.Warn("dropping event for slow subscriber",
				zap.String("topic", topic),
				zap.String("subject", subject))
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: %d of %d subscribers", ErrDropped, dropped, len(b.subs[topic]))
	}
	return nil
}

// SubscriberCount returns the number of open subscriptions for a topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
