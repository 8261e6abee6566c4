package server

import (
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTradeRequestRequest is the body of POST /api/trade/requests.
type CreateTradeRequestRequest struct {
	PostID  uint   `json:"postId"`
	Message string `json:"message"`
}

// CreateTradeRequest handles POST /api/trade/requests
// @Summary Send a trade request
// @Description Ask the owner of a post to trade. One pending request per post, at most five per day.
// @Tags trade-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTradeRequestRequest true "Trade request"
// @Success 201 {object} object{request=models.TradeRequestView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /trade/requests [post]
func (s *Server) CreateTradeRequest(c *fiber.Ctx) error {
	var req CreateTradeRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	created, err := s.requestService.Create(c.UserContext(), service.CreateTradeRequestInput{
		PostID:     req.PostID,
		FromUserID: callerID(c),
		Message:    req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"request": created.View(),
	})
}

// ListIncomingTradeRequests handles GET /api/trade/requests/incoming
// @Summary Pending requests addressed to me
// @Tags trade-requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} object{requests=[]models.TradeRequestView,pagination=object}
// @Router /trade/requests/incoming [get]
func (s *Server) ListIncomingTradeRequests(c *fiber.Ctx) error {
	p := parsePagination(c)
	requests, meta, err := s.requestService.ListIncoming(c.UserContext(), callerID(c), p.Page, p.Limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"requests":   models.TradeRequestViews(requests),
		"pagination": meta.JSON("totalRequests"),
	})
}

// ListOutgoingTradeRequests handles GET /api/trade/requests/outgoing
// @Summary Requests I have sent
// @Tags trade-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{requests=[]models.TradeRequestView}
// @Router /trade/requests/outgoing [get]
func (s *Server) ListOutgoingTradeRequests(c *fiber.Ctx) error {
	requests, err := s.requestService.ListOutgoing(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": models.TradeRequestViews(requests)})
}

// GetPendingTradeRequestCount handles GET /api/trade/requests/count
// @Summary Number of pending requests addressed to me
// @Tags trade-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{pending=int}
// @Router /trade/requests/count [get]
func (s *Server) GetPendingTradeRequestCount(c *fiber.Ctx) error {
	count, err := s.requestService.PendingCount(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"pending": count})
}

// AcceptTradeRequest handles PATCH /api/trade/requests/:id/accept
// @Summary Accept a trade request
// @Tags trade-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} object{request=models.TradeRequestView,conversationId=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /trade/requests/{id}/accept [patch]
func (s *Server) AcceptTradeRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, conversationID, err := s.requestService.Accept(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"request":        req.View(),
		"conversationId": conversationID,
	})
}

// DeclineTradeRequest handles PATCH /api/trade/requests/:id/decline
// @Summary Decline a trade request
// @Tags trade-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} object{request=models.TradeRequestView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /trade/requests/{id}/decline [patch]
func (s *Server) DeclineTradeRequest(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := s.requestService.Decline(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"request": req.View()})
}

// MarkTradeRequestRead handles PATCH /api/trade/requests/:id/read
// @Summary Mark a trade request as read
// @Tags trade-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} object{request=models.TradeRequestView}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /trade/requests/{id}/read [patch]
func (s *Server) MarkTradeRequestRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := s.requestService.MarkRead(c.UserContext(), id, callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"request": req.View()})
}
