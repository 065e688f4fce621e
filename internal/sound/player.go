package sound

import (
	"context"
	"encoding/json"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/expedite/pkg/event"
)

// NATSCuePlayer publishes cue events to the audio topic. The front-of-house
// audio box subscribes and renders the actual sound; this service never
// touches audio buffers.
type NATSCuePlayer struct {
	publisher events.Publisher
	topic     string
	logger    apt.Logger
}

func NewNATSCuePlayer(publisher events.Publisher, logger apt.Logger) *NATSCuePlayer {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &NATSCuePlayer{
		publisher: publisher,
		topic:     event.CuesTopic,
		logger:    logger,
	}
}

// Play implements board.CuePlayer.
func (p *NATSCuePlayer) Play(ctx context.Context, evt event.CueEvent) error {
	eventBytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, p.topic, eventBytes); err != nil {
		return err
	}
	p.logger.Debug("cue published", "cue", evt.Cue, "order_id", evt.OrderID)
	return nil
}

// NoopPlayer discards cues. Used when NATS is not configured and in tests.
type NoopPlayer struct{}

func (NoopPlayer) Play(ctx context.Context, evt event.CueEvent) error {
	return nil
}
