package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/user"
)

// RegisterUserRoutes wires the authenticated user area.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, session fiber.Handler) {
	group := r.Group("/user", session)
	group.Get("/profile", h.Profile)
	group.Get("/leaderboard", h.Leaderboard)
	group.Get("/notifications", h.Notifications)
}
