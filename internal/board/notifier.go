package board

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/expedite/pkg/event"
	"github.com/appetiteclub/expedite/pkg/enums/ordertype"
)

// CuePlayer is the opaque "play a named cue" capability. The NATS-backed
// implementation lives in internal/sound.
type CuePlayer interface {
	Play(ctx context.Context, evt event.CueEvent) error
}

// CueName derives the cue from (transition kind, order kind). Ready cues
// differ per order kind so counter staff can tell a takeout bag from a
// table run without looking up.
func CueName(transition, orderKind string) string {
	if transition == event.TransitionNewOrder {
		return "new_order"
	}
	switch orderKind {
	case ordertype.Types.Takeout.Name:
		return "order_ready_takeout"
	case ordertype.Types.Delivery.Name:
		return "order_ready_delivery"
	default:
		return "order_ready_dine_in"
	}
}

type cueKey struct {
	order      OrderID
	transition string
}

// Notifier schedules audio cues at most once per (order, transition)
// episode. The delivered record is marked even when playback fails, so a
// broken audio path cannot turn into a notification storm. Both the poll
// loop and operator actions fire cues, so the record carries its own lock;
// holding it across Play keeps the at-most-once check and the recording
// atomic.
type Notifier struct {
	board       string
	player      CuePlayer
	alertWorthy map[string]struct{}
	clock       func() time.Time
	logger      apt.Logger

	mu        sync.Mutex
	delivered map[cueKey]struct{}
}

func NewNotifier(board string, player CuePlayer, alertWorthy []string, logger apt.Logger) *Notifier {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	worthy := make(map[string]struct{}, len(alertWorthy))
	for _, status := range alertWorthy {
		worthy[status] = struct{}{}
	}
	return &Notifier{
		board:       board,
		player:      player,
		alertWorthy: worthy,
		delivered:   make(map[cueKey]struct{}),
		clock:       time.Now,
		logger:      logger,
	}
}

// Dispatch walks a tick's deltas and fires the qualifying cues. Must run
// before the snapshot swap so a mid-dispatch failure cannot desynchronize
// the record from the snapshot it was computed against.
func (n *Notifier) Dispatch(ctx context.Context, deltas []Delta) {
	for i := range deltas {
		d := &deltas[i]
		if d.Class == ClassNew {
			if _, worthy := n.alertWorthy[d.Order.Status]; worthy {
				n.fire(ctx, d.Order, event.TransitionNewOrder)
			}
		}
		if d.BecameReady {
			n.fire(ctx, d.Order, event.TransitionOrderReady)
		}
	}
}

// NotifyReady fires the ready cue for an auto-advanced order without
// waiting for the next poll to observe the transition. The shared record
// keeps the later poll-observed transition from firing again.
func (n *Notifier) NotifyReady(ctx context.Context, o *Order) {
	n.fire(ctx, o, event.TransitionOrderReady)
}

func (n *Notifier) fire(ctx context.Context, o *Order, transition string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := cueKey{order: o.ID, transition: transition}
	if _, done := n.delivered[key]; done {
		return
	}

	evt := event.CueEvent{
		EventType:   event.EventCue,
		OccurredAt:  n.clock().UTC(),
		Cue:         CueName(transition, o.Kind),
		Transition:  transition,
		OrderID:     o.ID.String(),
		OrderNumber: o.Number,
		OrderType:   o.Kind,
		Board:       n.board,
	}

	if n.player != nil {
		if err := n.player.Play(ctx, evt); err != nil {
			// Logged and swallowed. Marking delivered anyway is deliberate:
			// retrying a dead audio path every tick helps nobody.
			n.logger.Errorf("cue playback failed for order %s (%s): %v", o.ID, evt.Cue, err)
		}
	}

	n.delivered[key] = struct{}{}
}

// Delivered reports whether the cue for (order, transition) already fired
// in the current episode.
func (n *Notifier) Delivered(id OrderID, transition string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, done := n.delivered[cueKey{order: id, transition: transition}]
	return done
}

// Forget drops all record entries for an order, re-arming its cues. Called
// when the operator acts on the order (served, reset).
func (n *Notifier) Forget(id OrderID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key := range n.delivered {
		if key.order == id {
			delete(n.delivered, key)
		}
	}
}

// Prune removes entries whose owning order left the tracked status: ready
// entries for orders no longer ready, and any entry whose order dropped
// out of the snapshot. Runs against the freshly committed snapshot.
func (n *Notifier) Prune(snap *Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key := range n.delivered {
		o := snap.Get(key.order)
		if o == nil {
			delete(n.delivered, key)
			continue
		}
		if key.transition == event.TransitionOrderReady && !o.IsReady() {
			delete(n.delivered, key)
		}
	}
}
