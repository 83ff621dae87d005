// Package notify is the event-notification subsystem. A single Broker actor
// owns the outbound publish connection and the inbound subscribe connection
// to the shared bus; everything else talks to it through Send/Subscribe only.
// That funnel is what keeps connections that are unsafe for concurrent use
// out of reach of request handlers.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// commandQueueSize bounds the publish command queue. Send blocks
	// briefly when the queue is full, which acts as backpressure.
	commandQueueSize = 256

	// endpointBuffer is the per-subscriber delivery buffer. Delivery is
	// non-blocking: a subscriber that falls this far behind loses events.
	endpointBuffer = 16

	reconnectBase = 250 * time.Millisecond
	reconnectCap  = 15 * time.Second
)

type actionKind int

const (
	actionPublish actionKind = iota
	actionSubscribe
	actionUnsubscribe
)

type action struct {
	kind    actionKind
	event   Event
	channel string
}

// Broker serializes outbound publishes through one command loop and fans
// inbound bus messages out to local subscribers. Started at construction,
// runs for the process lifetime; Close exists for graceful shutdown.
type Broker struct {
	bus Bus
	log *slog.Logger

	actions chan action

	mu   sync.Mutex
	subs map[string][]*Subscription

	streamMu sync.Mutex
	stream   Stream

	cancel context.CancelFunc
	loops  sync.WaitGroup
}

// Subscription is one local delivery endpoint. Close deregisters it; the last
// endpoint on a channel also drops the broker's bus-level subscription.
type Subscription struct {
	// C receives every payload published to the subscribed channel while
	// the subscription is open. It is closed by Close.
	C <-chan string

	broker  *Broker
	channel string
	ch      chan string
	once    sync.Once
}

// NewBroker opens the inbound bus connection and starts both loops.
func NewBroker(bus Bus, log *slog.Logger) (*Broker, error) {
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := bus.Listen(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	b := &Broker{
		bus:     bus,
		log:     log,
		actions: make(chan action, commandQueueSize),
		subs:    make(map[string][]*Subscription),
		stream:  stream,
		cancel:  cancel,
	}

	b.loops.Add(2)
	go b.commandLoop(ctx)
	go b.fanoutLoop(ctx)

	return b, nil
}

// Send enqueues an event for publication and returns immediately. Delivery is
// fire-and-forget: publish failures are logged, never surfaced to the caller,
// and never fail the business operation that produced the event.
func (b *Broker) Send(e Event) {
	b.actions <- action{kind: actionPublish, event: e}
}

// Subscribe registers a new local delivery endpoint for channel. The first
// endpoint on a channel makes the broker's inbound connection listen on it at
// the bus level; later endpoints just join the fan-out. Safe for concurrent
// use.
func (b *Broker) Subscribe(channel string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		broker:  b,
		channel: channel,
		ch:      make(chan string, endpointBuffer),
	}
	sub.C = sub.ch

	if len(b.subs[channel]) == 0 {
		b.actions <- action{kind: actionSubscribe, channel: channel}
	}
	b.subs[channel] = append(b.subs[channel], sub)

	return sub
}

// Close deregisters the endpoint and closes C. Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.broker

		b.mu.Lock()
		subs := b.subs[s.channel]
		for i, other := range subs {
			if other == s {
				b.subs[s.channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		last := len(b.subs[s.channel]) == 0
		if last {
			delete(b.subs, s.channel)
		}
		// fanOut holds mu while delivering, so nothing can be mid-send
		// on this endpoint once we get here.
		close(s.ch)
		b.mu.Unlock()

		if last {
			b.actions <- action{kind: actionUnsubscribe, channel: s.channel}
		}
	})
}

// Close stops both loops and drops the bus connections.
func (b *Broker) Close() {
	b.cancel()

	b.streamMu.Lock()
	if b.stream != nil {
		_ = b.stream.Close()
	}
	b.streamMu.Unlock()

	b.loops.Wait()
}

// commandLoop owns the outbound connection. Publishes happen in the order
// Send was called; subscribe/unsubscribe commands adjust the inbound
// connection's bus-level subscriptions.
func (b *Broker) commandLoop(ctx context.Context) {
	defer b.loops.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case act := <-b.actions:
			switch act.kind {
			case actionPublish:
				if err := b.bus.Publish(ctx, act.event.Channel, act.event.Payload); err != nil {
					b.log.Error("bus publish failed",
						"channel", act.event.Channel,
						"err", err,
					)
				}
			case actionSubscribe:
				if err := b.currentStream().Subscribe(ctx, act.channel); err != nil {
					b.log.Error("bus subscribe failed", "channel", act.channel, "err", err)
				}
			case actionUnsubscribe:
				if err := b.currentStream().Unsubscribe(ctx, act.channel); err != nil {
					b.log.Error("bus unsubscribe failed", "channel", act.channel, "err", err)
				}
			}
		}
	}
}

// fanoutLoop owns the inbound connection. A read failure triggers reconnect
// with exponential backoff rather than taking the process down; a transient
// bus blip is not fatal.
func (b *Broker) fanoutLoop(ctx context.Context) {
	defer b.loops.Done()

	for {
		msg, err := b.currentStream().Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			b.log.Warn("bus read failed, reconnecting", "err", err)
			if err := b.reconnect(ctx); err != nil {
				// Only reachable when the context is cancelled.
				return
			}
			continue
		}

		b.fanOut(msg)
	}
}

// fanOut delivers msg to every endpoint registered for its channel, in
// registration order. Delivery per endpoint is non-blocking so one slow or
// dead subscriber cannot stall the rest.
func (b *Broker) fanOut(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[msg.Channel] {
		select {
		case sub.ch <- msg.Payload:
		default:
			b.log.Warn("event dropped: subscriber buffer full",
				"channel", msg.Channel,
			)
		}
	}
}

// reconnect replaces the inbound connection and restores every bus-level
// subscription the registry currently holds. Retries forever with capped
// exponential backoff until it succeeds or the context is cancelled.
func (b *Broker) reconnect(ctx context.Context) error {
	backoff := retry.WithCappedDuration(reconnectCap, retry.NewExponential(reconnectBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		stream, err := b.bus.Listen(ctx)
		if err != nil {
			b.log.Warn("bus reconnect failed", "err", err)
			return retry.RetryableError(err)
		}

		if channels := b.channels(); len(channels) > 0 {
			if err := stream.Subscribe(ctx, channels...); err != nil {
				_ = stream.Close()
				b.log.Warn("bus resubscribe failed", "err", err)
				return retry.RetryableError(err)
			}
		}

		b.swapStream(stream)
		b.log.Info("bus connection restored")
		return nil
	})
}

func (b *Broker) channels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	channels := make([]string, 0, len(b.subs))
	for channel := range b.subs {
		channels = append(channels, channel)
	}
	return channels
}

func (b *Broker) currentStream() Stream {
	b.streamMu.Lock()
	defer b.streamMu.Unlock()
	return b.stream
}

func (b *Broker) swapStream(stream Stream) {
	b.streamMu.Lock()
	old := b.stream
	b.stream = stream
	b.streamMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}
