package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/contest"
)

// RegisterContestRoutes wires contests and surveys, all behind a session.
// Admin paths register before the ":id" wildcard so they are matched first.
func RegisterContestRoutes(r fiber.Router, h *contest.Handler, session, adminOnly fiber.Handler) {
	group := r.Group("/contests", session)
	group.Get("/", h.List)
	group.Get("/admin/all", adminOnly, h.AdminList)
	group.Get("/admin/:id/participants", adminOnly, h.Participants)
	group.Get("/:id", h.Get)
	group.Post("/:id/submit", h.Submit)
	group.Post("/", adminOnly, h.Create)
	group.Put("/:id", adminOnly, h.Update)
	group.Delete("/:id", adminOnly, h.Delete)
}
