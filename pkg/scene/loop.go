package scene

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/observability"
)

// DefaultFrameInterval is roughly one display refresh.
const DefaultFrameInterval = time.Second / 60

// Loop drives an Engine from a single goroutine: one frame per tick, with
// input events and completed loads applied between frames.
type Loop struct {
	engine   *Engine
	interval time.Duration
	inputs   chan func(*Engine)

	mu      sync.Mutex
	pending *Load
	ready   chan struct{}
}

// NewLoop returns a loop for e. A non-positive interval uses
// [DefaultFrameInterval].
func NewLoop(e *Engine, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		engine:   e,
		interval: interval,
		inputs:   make(chan func(*Engine), 64),
		ready:    make(chan struct{}, 1),
	}
}

// Do queues fn to run on the loop goroutine. It blocks while the queue is
// full and returns ctx.Err() if ctx ends first.
func (l *Loop) Do(ctx context.Context, fn func(*Engine)) error {
	select {
	case l.inputs <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit hands a prepared load to the loop. When several loads arrive
// between frames only the one with the newest token is kept.
func (l *Loop) Submit(ld Load) {
	l.mu.Lock()
	if l.pending == nil || ld.Token > l.pending.Token {
		l.pending = &ld
	}
	l.mu.Unlock()
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// Fetch reads a snapshot from src, lays it out on the calling goroutine and
// submits it. A fetch overtaken by a newer one is discarded when applied.
// The token is taken before reading, so a fetch that fails still supersedes
// older fetches in flight and the engine keeps its current data.
func (l *Loop) Fetch(ctx context.Context, src network.Source, w network.Window) error {
	token := l.engine.BeginLoad()
	entities, rels, err := FetchSnapshot(ctx, src, w)
	if err != nil {
		return err
	}
	l.Submit(PrepareLoad(ctx, token, entities, rels, l.engine.LayoutOptions()))
	return nil
}

// FetchSnapshot lists entities and the relationships admitted by w.
func FetchSnapshot(ctx context.Context, src network.Source, w network.Window) ([]network.Entity, []network.Relationship, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, network.NameOf(src))
	start := time.Now()

	entities, err := src.ListEntities(ctx)
	if err != nil {
		hooks.OnFetchComplete(ctx, network.NameOf(src), 0, 0, time.Since(start), err)
		return nil, nil, err
	}
	rels, err := src.ListRelationships(ctx, w)
	hooks.OnFetchComplete(ctx, network.NameOf(src), len(entities), len(rels), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return entities, rels, nil
}

// Run draws frames until ctx ends.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.engine.Frame(now)
		case fn := <-l.inputs:
			fn(l.engine)
		case <-l.ready:
			l.mu.Lock()
			ld := l.pending
			l.pending = nil
			l.mu.Unlock()
			if ld != nil {
				l.engine.ApplyLoad(*ld)
			}
		}
	}
}
