// Package notifications publishes submission events into Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"

	"forgeline/internal/models"
)

// Notifier provides helpers to publish submission events into Redis channels.
// A nil client disables publishing without error, so callers do not need to
// branch on whether Redis is configured.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// SubmissionEvent is the payload published for each accepted submission.
type SubmissionEvent struct {
	ConfirmationID string    `json:"confirmation_id"`
	Kind           string    `json:"kind"`
	Locale         string    `json:"locale"`
	Email          string    `json:"email"`
	Attachments    int       `json:"attachments"`
	ReceivedAt     time.Time `json:"received_at"`
}

// PublishSubmission sends a submission event to the kind-scoped channel.
func (n *Notifier) PublishSubmission(ctx context.Context, submission *models.Submission) error {
	if n.rdb == nil {
		return nil
	}
	event := SubmissionEvent{
		ConfirmationID: submission.ConfirmationID,
		Kind:           submission.Kind,
		Locale:         submission.Locale,
		Email:          submission.Email,
		Attachments:    len(submission.Attachments),
		ReceivedAt:     submission.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, SubmissionChannel(submission.Kind), string(payload)).Err()
}

// PublishIndexRebuild announces a completed content index rebuild.
func (n *Notifier) PublishIndexRebuild(ctx context.Context, locales []string) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(map[string]interface{}{
		"locales":  locales,
		"built_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, "content:rebuild", string(payload)).Err()
}

// StartSubmissionSubscriber subscribes to pattern `submissions:*` and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartSubmissionSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "submissions:*", "content:rebuild")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in submission subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// SubmissionChannel derives the Redis channel name for a submission kind.
func SubmissionChannel(kind string) string {
	return "submissions:" + kind
}
