package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Tags feature-flags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := callerID(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
