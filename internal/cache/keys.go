package cache

import (
	"fmt"
	"time"
)

const (
	BlacklistKeyPrefix = "blacklist:%s"
	WSTicketKeyPrefix  = "ws_ticket:%s"
)

// WSTicketTTL is how long a websocket ticket can be redeemed.
const WSTicketTTL = 60 * time.Second

// BlacklistKey marks a revoked token by its jti.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

// WSTicketKey holds the user ID a websocket ticket was issued to.
func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}
