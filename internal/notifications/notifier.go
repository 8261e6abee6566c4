// Package notifications delivers trade events to connected users through
// Redis pub/sub and websocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix  = "notifications:user:"
	userChannelPattern = userChannelPrefix + "*"
)

// Notifier publishes notifications into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier. A nil client makes every publish a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishEvent encodes ev and sends it to userID.
func (n *Notifier) PublishEvent(ctx context.Context, userID uint, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.PublishUser(ctx, userID, string(data))
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(userID uint, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	// Wait for the subscription to be confirmed so publishes right after
	// this call are not missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
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
				userID, ok := ParseUserChannel(msg.Channel)
				if !ok {
					middleware.Logger.WarnContext(ctx, "invalid notification channel", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.ErrorContext(ctx, "panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(userID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParseUserChannel is the inverse of UserChannel.
func ParseUserChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
