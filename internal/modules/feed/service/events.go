package service

import (
	"context"
	"sync"
	"time"

	"anoa.com/gooddeeds/pkg/logger"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Events is what write paths call after persisting or removing a source
// document. Implementations never report failures back to the caller.
type Events interface {
	DocumentSaved(src Source)
	DocumentRemoved(src Source)
}

type eventKind int

const (
	eventSaved eventKind = iota + 1
	eventRemoved
)

type event struct {
	kind eventKind
	src  Source
}

const handleTimeout = 5 * time.Second

func handle(a *Aggregator, ev event) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var err error
	switch ev.kind {
	case eventSaved:
		err = a.OnDocumentSaved(ctx, ev.src)
	case eventRemoved:
		err = a.OnDocumentRemoved(ctx, ev.src)
	}
	if err != nil {
		logger.Report(err, "feed aggregation failed",
			zap.String("source_type", string(ev.src.Type)),
			zap.String("source_id", ev.src.ID.String()),
		)
	}
}

// InlineEvents runs the aggregator on the calling goroutine.
type InlineEvents struct {
	aggregator *Aggregator
}

func NewInlineEvents(a *Aggregator) *InlineEvents {
	return &InlineEvents{aggregator: a}
}

func (e *InlineEvents) DocumentSaved(src Source) {
	handle(e.aggregator, event{kind: eventSaved, src: src})
}

func (e *InlineEvents) DocumentRemoved(src Source) {
	handle(e.aggregator, event{kind: eventRemoved, src: src})
}

// Dispatcher runs the aggregator off the request path. Events are sharded by
// acting user so that one user's events are applied in order by one worker,
// which keeps a user's streak from being split by two concurrent acts within
// this process.
type Dispatcher struct {
	aggregator *Aggregator
	shards     []chan event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(a *Aggregator, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	d := &Dispatcher{aggregator: a, shards: make([]chan event, workers)}
	for i := range d.shards {
		d.shards[i] = make(chan event, queueSize)
	}
	return d
}

// Start launches one worker per shard and returns a stop func that drains
// queued events until ctx is done.
func (d *Dispatcher) Start() func(context.Context) error {
	for _, ch := range d.shards {
		d.wg.Add(1)
		go func(ch chan event) {
			defer d.wg.Done()
			for ev := range ch {
				handle(d.aggregator, ev)
			}
		}(ch)
	}
	return d.stop
}

func (d *Dispatcher) stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.shards {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) DocumentSaved(src Source) {
	d.enqueue(event{kind: eventSaved, src: src})
}

func (d *Dispatcher) DocumentRemoved(src Source) {
	d.enqueue(event{kind: eventRemoved, src: src})
}

func (d *Dispatcher) enqueue(ev event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		logger.Warn("feed dispatcher stopped, drop event",
			zap.String("source_type", string(ev.src.Type)), zap.String("source_id", ev.src.ID.String()))
		return
	}

	ch := d.shards[xxhash.Sum64(ev.src.UserID[:])%uint64(len(d.shards))]
	select {
	case ch <- ev:
	default:
		logger.Warn("feed queue full, drop event",
			zap.String("source_type", string(ev.src.Type)), zap.String("source_id", ev.src.ID.String()))
	}
}

// QueueLen returns the number of queued events across shards.
func (d *Dispatcher) QueueLen() int {
	n := 0
	for _, ch := range d.shards {
		n += len(ch)
	}
	return n
}
