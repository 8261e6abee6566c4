package server

import (
	"errors"
	"strings"
	"unicode"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/limit query parameters. Out of range values
// are clamped later by models.ClampPage.
type Pagination struct {
	Page  int
	Limit int
}

func parsePagination(c *fiber.Ctx) Pagination {
	return Pagination{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", models.DefaultPageLimit),
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// callerID returns the authenticated user set by AuthRequired.
func callerID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// invalidBody writes the standard 400 for an unparseable JSON body.
func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}
