package board

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/expedite/pkg/event"
	"github.com/appetiteclub/expedite/pkg/enums/itemstatus"
	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
)

var (
	ErrOrderNotFound = errors.New("order not on board")
	ErrItemNotFound  = errors.New("order item not found")
	ErrItemsNotReady = errors.New("not every item is ready")
	ErrNoTransition  = errors.New("no transition from current status")
)

// OrderSource pulls the current set of active orders from the order
// service. A failed fetch is transient: the retained snapshot stays as-is.
type OrderSource interface {
	ActiveOrders(ctx context.Context) ([]Order, error)
}

// StatusGateway is the narrow interface through which the board requests
// status changes. Requests are idempotent from the caller's view; the
// next poll is the authoritative correction either way.
type StatusGateway interface {
	SetOrderStatus(ctx context.Context, orderID OrderID, status string) error
	SetItemStatus(ctx context.Context, orderID OrderID, itemID OrderItemID, status string) error
}

// Config tunes one board engine. Boards never share state: the kitchen
// display and the pickup board each run their own engine instance.
type Config struct {
	// Name tags logs, cues and transition events ("kitchen", "pickup").
	Name string
	// PollInterval is the tick period. Defaults to 3s.
	PollInterval time.Duration
	// Statuses are the tracked status columns, in display order.
	Statuses []string
	// AlertWorthy statuses fire the new-order cue on first sight.
	AlertWorthy []string
	// Reference selects the timestamp driving ordering and urgency.
	Reference ReferenceTime
	// Thresholds are the urgency tier boundaries.
	Thresholds Thresholds
}

func (c *Config) normalize() {
	if c.Name == "" {
		c.Name = "kitchen"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if len(c.Statuses) == 0 {
		c.Statuses = []string{
			orderstatus.Statuses.Confirmed.Name,
			orderstatus.Statuses.Preparing.Name,
			orderstatus.Statuses.Ready.Name,
		}
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = DefaultThresholds()
	}
}

// PollHealth reflects the outcome of the most recent tick, feeding the
// unobtrusive connection indicator.
type PollHealth struct {
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
	SnapshotAt time.Time `json:"snapshot_at"`
}

// Engine owns one board: it polls the order source, diffs against the
// retained snapshot, dispatches cues, evaluates the auto-advance rule and
// commits the new snapshot. One tick at a time; every error degrades to
// stale-but-visible instead of stopping the loop.
type Engine struct {
	cfg        Config
	source     OrderSource
	gateway    StatusGateway
	notifier   *Notifier
	completion *Completion
	publisher  aptevents.Publisher
	logger     apt.Logger
	clock      func() time.Time

	mu           sync.RWMutex
	retained     *Snapshot
	newlyArrived map[OrderID]struct{}
	newlyReady   map[OrderID]struct{}
	health       PollHealth

	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewEngine builds an engine. publisher may be nil (no transition audit
// stream); player may be nil (silent board).
func NewEngine(cfg Config, source OrderSource, gateway StatusGateway, player CuePlayer, publisher aptevents.Publisher, logger apt.Logger) *Engine {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	cfg.normalize()
	return &Engine{
		cfg:          cfg,
		source:       source,
		gateway:      gateway,
		notifier:     NewNotifier(cfg.Name, player, cfg.AlertWorthy, logger),
		completion:   NewCompletion(),
		publisher:    publisher,
		logger:       logger.With("board", cfg.Name),
		clock:        time.Now,
		retained:     emptySnapshot(),
		newlyArrived: make(map[OrderID]struct{}),
		newlyReady:   make(map[OrderID]struct{}),
	}
}

// Start launches the poll loop. Implements the lifecycle contract used by
// WithLifecycle. Starting an already-running engine is an error; a second
// loop would double-poll and leak the first.
func (e *Engine) Start(ctx context.Context) error {
	if e.cancel != nil {
		return errors.New("board engine already started")
	}
	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	e.logger.Info("starting board engine", "poll_interval", e.cfg.PollInterval.String())
	go e.run(runCtx)
	return nil
}

// Stop cancels the poll loop. An in-flight fetch has its result discarded;
// no differ or notification work runs after teardown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel == nil {
		return nil
	}
	e.cancel()
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	e.cancel = nil
	e.logger.Info("board engine stopped")
	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	if err := e.Tick(ctx); err != nil {
		e.logger.Info("initial poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				e.logger.Info("poll failed", "error", err)
			}
		}
	}
}

// Tick runs one poll cycle: fetch, diff, notify, auto-advance, commit.
// A tick still in flight makes the next one a no-op rather than a race.
func (e *Engine) Tick(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	defer e.inFlight.Store(false)

	orders, err := e.source.ActiveOrders(ctx)
	if err != nil {
		e.recordFailure(err)
		return err
	}
	if ctx.Err() != nil {
		// Teardown raced the fetch; the result must not be applied.
		return ctx.Err()
	}

	prev := e.snapshot()
	deltas := Diff(prev, orders)

	e.notifier.Dispatch(ctx, deltas)
	e.autoAdvance(ctx, orders)

	e.commit(orders, deltas)
	return nil
}

// autoAdvance requests preparing→ready for orders whose items all reached
// ready this tick. The request is latched per completion episode, and the
// fetched copy is stamped ready so the committed snapshot matches what the
// backend will report next poll.
func (e *Engine) autoAdvance(ctx context.Context, orders []Order) {
	for i := range orders {
		o := &orders[i]
		if !e.completion.ShouldAdvance(o) {
			continue
		}
		if err := e.requestOrderStatus(ctx, o, orderstatus.Statuses.Ready.Name, true); err != nil {
			e.logger.Errorf("auto-advance failed for order %s: %v", o.ID, err)
			// Re-arm: the guard still holds, the next evaluation may retry.
			e.completion.Forget(o.ID)
			continue
		}
		o.Status = orderstatus.Statuses.Ready.Name
		e.notifier.NotifyReady(ctx, o)
	}
}

// commit swaps in the new snapshot and the one-cycle highlight sets. Cues
// were all issued before this point, so a failure mid-notification can
// never desynchronize the record from the snapshot it was computed from.
func (e *Engine) commit(orders []Order, deltas []Delta) {
	snap := NewSnapshot(orders, e.clock())

	arrived := make(map[OrderID]struct{})
	ready := make(map[OrderID]struct{})
	for i := range deltas {
		if deltas[i].Class == ClassNew {
			arrived[deltas[i].Order.ID] = struct{}{}
		}
		if deltas[i].BecameReady {
			ready[deltas[i].Order.ID] = struct{}{}
		}
	}

	e.mu.Lock()
	e.retained = snap
	e.newlyArrived = arrived
	e.newlyReady = ready
	e.health = PollHealth{OK: true, CheckedAt: snap.TakenAt(), SnapshotAt: snap.TakenAt()}
	e.mu.Unlock()

	e.notifier.Prune(snap)
	e.completion.Prune(snap)
}

func (e *Engine) recordFailure(err error) {
	e.mu.Lock()
	e.health = PollHealth{
		OK:         false,
		Error:      err.Error(),
		CheckedAt:  e.clock(),
		SnapshotAt: e.retained.TakenAt(),
	}
	e.mu.Unlock()
}

func (e *Engine) snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.retained
}

// Health returns the most recent poll outcome.
func (e *Engine) Health() PollHealth {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.health
}

// Order returns the retained copy of an order, or nil.
func (e *Engine) Order(id OrderID) *Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.retained.Get(id)
}

// AdvanceOrder applies the staff "advance" action: confirmed→preparing,
// preparing→ready (guarded by all items ready), ready→served. The local
// copy is updated optimistically; a failed request surfaces once and the
// next poll corrects.
func (e *Engine) AdvanceOrder(ctx context.Context, id OrderID) (*Order, error) {
	o := e.Order(id)
	if o == nil {
		return nil, ErrOrderNotFound
	}

	next, ok := orderstatus.Next(o.Status)
	if !ok {
		return nil, ErrNoTransition
	}
	if next.Name == orderstatus.Statuses.Ready.Name && !o.AllItemsReady() {
		return nil, ErrItemsNotReady
	}

	if err := e.requestOrderStatus(ctx, o, next.Name, false); err != nil {
		return nil, err
	}

	updated := o.Clone()
	updated.Status = next.Name
	e.applyLocal(updated)

	switch next.Name {
	case orderstatus.Statuses.Ready.Name:
		e.notifier.NotifyReady(ctx, updated)
	case orderstatus.Statuses.Served.Name:
		// Acting on the order ends its ready episode and frees its cues.
		e.notifier.Forget(id)
		e.completion.Forget(id)
	}
	return updated, nil
}

// MarkServed applies the counter "mark served" action from ready.
func (e *Engine) MarkServed(ctx context.Context, id OrderID) (*Order, error) {
	o := e.Order(id)
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if !o.IsReady() {
		return nil, ErrNoTransition
	}
	return e.AdvanceOrder(ctx, id)
}

// ToggleItem flips one item between pending and ready and re-evaluates the
// completion guard, auto-advancing the order when the toggle completes it.
func (e *Engine) ToggleItem(ctx context.Context, orderID OrderID, itemID OrderItemID) (*Order, error) {
	o := e.Order(orderID)
	if o == nil {
		return nil, ErrOrderNotFound
	}
	item := o.Item(itemID)
	if item == nil {
		return nil, ErrItemNotFound
	}

	next := itemstatus.Statuses.Ready.Name
	if item.Status == itemstatus.Statuses.Ready.Name {
		next = itemstatus.Statuses.Pending.Name
	}

	if err := e.gateway.SetItemStatus(ctx, orderID, itemID, next); err != nil {
		e.logger.Errorf("item status change failed for order %s item %s: %v", orderID, itemID, err)
		return nil, err
	}

	updated := o.Clone()
	updated.Item(itemID).Status = next
	updated.UpdatedAt = e.clock()

	if e.completion.ShouldAdvance(updated) {
		if err := e.requestOrderStatus(ctx, updated, orderstatus.Statuses.Ready.Name, true); err != nil {
			e.logger.Errorf("auto-advance failed for order %s: %v", orderID, err)
			e.completion.Forget(orderID)
		} else {
			updated.Status = orderstatus.Statuses.Ready.Name
			e.notifier.NotifyReady(ctx, updated)
		}
	}

	e.applyLocal(updated)
	return updated, nil
}

// ResetOrder applies the operator reset: back to confirmed with all item
// statuses cleared to pending. Item clear failures are logged and left for
// the next poll to reconcile.
func (e *Engine) ResetOrder(ctx context.Context, id OrderID) (*Order, error) {
	o := e.Order(id)
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if orderstatus.IsTerminal(o.Status) {
		return nil, ErrNoTransition
	}

	if err := e.requestOrderStatus(ctx, o, orderstatus.Statuses.Confirmed.Name, false); err != nil {
		return nil, err
	}

	updated := o.Clone()
	updated.Status = orderstatus.Statuses.Confirmed.Name
	for i := range updated.Items {
		item := &updated.Items[i]
		if item.Status == itemstatus.Statuses.Pending.Name {
			continue
		}
		if err := e.gateway.SetItemStatus(ctx, id, item.ID, itemstatus.Statuses.Pending.Name); err != nil {
			e.logger.Errorf("item reset failed for order %s item %s: %v", id, item.ID, err)
			continue
		}
		item.Status = itemstatus.Statuses.Pending.Name
	}

	e.applyLocal(updated)
	e.completion.Forget(id)
	e.notifier.Forget(id)
	return updated, nil
}

// applyLocal swaps in a snapshot copy holding the optimistic order. The
// published snapshot is never mutated in place: a concurrent tick diffing
// against the old pointer keeps a consistent view, and the next successful
// poll replaces everything wholesale.
func (e *Engine) applyLocal(o *Order) {
	e.mu.Lock()
	e.retained = e.retained.withOrder(o)
	e.mu.Unlock()
}

func (e *Engine) requestOrderStatus(ctx context.Context, o *Order, status string, automatic bool) error {
	if err := e.gateway.SetOrderStatus(ctx, o.ID, status); err != nil {
		return err
	}
	e.publishTransition(ctx, o, status, automatic)
	return nil
}

func (e *Engine) publishTransition(ctx context.Context, o *Order, newStatus string, automatic bool) {
	if e.publisher == nil {
		return
	}

	evt := event.BoardTransitionEvent{
		EventType:      event.EventBoardTransition,
		OccurredAt:     e.clock().UTC(),
		Board:          e.cfg.Name,
		OrderID:        o.ID.String(),
		OrderNumber:    o.Number,
		NewStatus:      newStatus,
		PreviousStatus: o.Status,
		Automatic:      automatic,
	}

	eventBytes, _ := json.Marshal(evt)
	if err := e.publisher.Publish(ctx, event.TransitionsTopic, eventBytes); err != nil {
		e.logger.Errorf("Failed to publish board transition event: %v", err)
	}
}
