package server

import (
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTradePostRequest is the body of POST /api/trade/posts.
type CreateTradePostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
}

// CreateTradePost handles POST /api/trade/posts
// @Summary Create a trade post
// @Description Offer an item for barter. Title and description are required.
// @Tags trade-posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTradePostRequest true "Trade post"
// @Success 201 {object} object{post=models.TradePostView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /trade/posts [post]
func (s *Server) CreateTradePost(c *fiber.Ctx) error {
	var req CreateTradePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	post, err := s.postService.Create(c.UserContext(), service.CreateTradePostInput{
		UserID:      callerID(c),
		Title:       req.Title,
		Description: req.Description,
		Images:      req.Images,
		Category:    req.Category,
		Tags:        req.Tags,
		Location:    req.Location,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"post": post.View(),
	})
}

// ListTradePosts handles GET /api/trade/posts
// @Summary List trade posts
// @Description Active posts, newest first, with optional category, tag and text filters
// @Tags trade-posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param category query string false "Exact category"
// @Param tag query string false "Tag the post must carry"
// @Param search query string false "Case-insensitive title or description match"
// @Success 200 {object} object{posts=[]models.TradePostView,pagination=object}
// @Router /trade/posts [get]
func (s *Server) ListTradePosts(c *fiber.Ctx) error {
	p := parsePagination(c)
	posts, meta, err := s.postService.List(c.UserContext(), service.ListTradePostsInput{
		Page:     p.Page,
		Limit:    p.Limit,
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":      models.TradePostViews(posts),
		"pagination": meta.JSON("totalPosts"),
	})
}

// ListMyTradePosts handles GET /api/trade/posts/user
// @Summary List my trade posts
// @Tags trade-posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{posts=[]models.TradePostView}
// @Failure 401 {object} models.ErrorResponse
// @Router /trade/posts/user [get]
func (s *Server) ListMyTradePosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListByOwner(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"posts": models.TradePostViews(posts)})
}

// GetTradePost handles GET /api/trade/posts/:id
// @Summary Get a trade post
// @Tags trade-posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.TradePostView
// @Failure 404 {object} models.ErrorResponse
// @Router /trade/posts/{id} [get]
func (s *Server) GetTradePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post.View())
}

// DeleteTradePost handles DELETE /api/trade/posts/:id
// @Summary Delete a trade post
// @Description Only the owner may delete a post
// @Tags trade-posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /trade/posts/{id} [delete]
func (s *Server) DeleteTradePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), id, callerID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
