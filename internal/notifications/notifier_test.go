package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	userID  uint
	payload string
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.PublishEvent(context.Background(), 1, Event{Type: "x"}))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(uint, string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishUser(context.Background(), 1, "payload"))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))
}

func TestParseUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		channel string
		want    uint
		ok      bool
	}{
		{"notifications:user:42", 42, true},
		{"notifications:user:0", 0, false},
		{"notifications:user:abc", 0, false},
		{"chat:conv:5", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseUserChannel(tt.channel)
		assert.Equal(t, tt.ok, ok, tt.channel)
		assert.Equal(t, tt.want, got, tt.channel)
	}
}

func TestNotifier_PublishEventReachesSubscriber(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan received, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(userID uint, payload string) {
		got <- received{userID, payload}
	}))

	req := &models.TradeRequest{ID: 3, PostID: 9, FromUserID: 1, ToUserID: 2, Status: models.TradeRequestStatusPending}
	require.NoError(t, n.PublishEvent(context.Background(), 2, TradeRequestEvent(EventTradeRequestReceived, req)))

	select {
	case msg := <-got:
		assert.Equal(t, uint(2), msg.userID)
		var ev struct {
			Type    string                 `json:"type"`
			Payload map[string]interface{} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.payload), &ev))
		assert.Equal(t, EventTradeRequestReceived, ev.Type)
		assert.EqualValues(t, 9, ev.Payload["postId"])
		assert.Equal(t, "pending", ev.Payload["status"])
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())

	payloads := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ uint, payload string) {
		payloads <- payload
	}))

	require.NoError(t, n.PublishUser(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool { return len(payloads) == 1 }, time.Second, 10*time.Millisecond)
	<-payloads

	cancel()
	time.Sleep(20 * time.Millisecond)

	_ = n.PublishUser(context.Background(), 1, "after-cancel")
	assert.Never(t, func() bool { return len(payloads) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}
