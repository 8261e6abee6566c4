package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/cache"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsStreamPath = "/api/ws"

var errInvalidTicket = errors.New("invalid websocket ticket")

// IssueWSTicket handles POST /api/ws/ticket
// @Summary Issue a websocket ticket
// @Description Single-use ticket for GET /api/ws, valid for 60 seconds
// @Tags realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{ticket=string,expiresIn=int}
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Message: "Realtime updates are unavailable",
		})
	}

	ticket := uuid.NewString()
	userID := callerID(c)
	if err := s.redis.Set(c.UserContext(), cache.WSTicketKey(ticket),
		strconv.FormatUint(uint64(userID), 10), cache.WSTicketTTL).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("ws_ticket_set").Inc()
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":    ticket,
		"expiresIn": int(cache.WSTicketTTL.Seconds()),
	})
}

// consumeWSTicket atomically reads and deletes a ticket.
func (s *Server) consumeWSTicket(ctx context.Context, ticket string) (uint, error) {
	raw, err := s.redis.GetDel(ctx, cache.WSTicketKey(ticket)).Result()
	if err != nil {
		return 0, errInvalidTicket
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidTicket
	}
	return uint(id), nil
}

// WebsocketUpgrade rejects plain HTTP requests on the stream endpoint.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("WebSocket upgrade required"))
	}
	return c.Next()
}

// TradeEventsHandler streams the caller's trade events. Clients only read;
// anything they send is discarded.
// @Summary Trade event stream
// @Tags realtime
// @Param ticket query string true "Ticket from POST /ws/ticket"
// @Success 101
// @Failure 401 {object} models.ErrorResponse
// @Router /ws [get]
func (s *Server) TradeEventsHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			middleware.Logger.Warn("trade stream register failed",
				slog.Uint64("user_id", uint64(uid)), slog.Any("error", err))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
