package notify

import (
	"context"
	"errors"
	"fmt"

	"atelier/event"
)

// Topics are the events that produce a notification.
var Topics = []string{"deploy.done", "thumbs.failed"}

// Handle turns an event into a notification. Unknown events are ignored.
func (n *NtfySender) Handle(ctx context.Context, msg event.Message) error {
	switch msg.Name {
	case "deploy.done":
		target, _ := msg.Fields["target"].(string)
		viewURL, _ := msg.Fields["url"].(string)
		return n.SendDeployNotification(ctx, target, viewURL)
	case "thumbs.failed":
		name, _ := msg.Fields["name"].(string)
		reason, _ := msg.Fields["error"].(string)
		return n.SendFailure(ctx, fmt.Sprintf("thumbnail for %s", name), errors.New(reason))
	}
	return nil
}

// Listen sends a notification for every event on sub until ctx is done
// or the subscription is closed.
func (n *NtfySender) Listen(ctx context.Context, sub event.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Receiver:
			if !ok {
				return
			}
			n.forward(ctx, msg)
		}
	}
}

// Flush sends notifications for the events already queued on sub and
// returns without waiting for more.
func (n *NtfySender) Flush(ctx context.Context, sub event.Subscription) {
	for {
		select {
		case msg, ok := <-sub.Receiver:
			if !ok {
				return
			}
			n.forward(ctx, msg)
		default:
			return
		}
	}
}

func (n *NtfySender) forward(ctx context.Context, msg event.Message) {
	if err := n.Handle(ctx, msg); err != nil {
		log.Warnf("ntfy: %s: %s", msg.Name, err)
	}
}
