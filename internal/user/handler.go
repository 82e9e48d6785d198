package user

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/star-marathon/star_backend/internal/middleware"
	"github.com/star-marathon/star_backend/internal/profile"
	"github.com/star-marathon/star_backend/internal/storm"
)

// Handler serves the authenticated user area. Balance, leaderboard and
// transaction history live at the loyalty provider and are fetched with the
// session credential embedded in the local token.
type Handler struct {
	ledger   storm.Ledger
	profiles profile.Repository
}

func NewHandler(ledger storm.Ledger, profiles profile.Repository) *Handler {
	return &Handler{ledger: ledger, profiles: profiles}
}

// Profile combines the local profile with the provider's fio and balance.
func (h *Handler) Profile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthenticated")
	}

	stormProfile, err := h.ledger.GetProfile(c.UserContext(), middleware.ExtToken(c))
	if err != nil {
		// The bypass sentinel and expired provider sessions land here.
		stormProfile = storm.Profile{}
	}

	local, err := h.profiles.Find(c.UserContext(), userID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return fiber.NewError(http.StatusInternalServerError, "profile lookup failed")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id":        local.ID,
		"username":  local.Username,
		"avatarUrl": local.AvatarURL,
		"role":      local.Role,
		"balance":   stormProfile.Balance,
		"fio":       stormProfile.Fio,
	})
}

// Leaderboard proxies the provider rating.
func (h *Handler) Leaderboard(c *fiber.Ctx) error {
	list, err := h.ledger.GetRating(c.UserContext(), middleware.ExtToken(c))
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "rating unavailable")
	}
	if list == nil {
		list = []storm.RatingItem{}
	}
	return c.Status(http.StatusOK).JSON(list)
}

type notificationItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	IsRead      bool      `json:"isRead"`
}

// Notifications renders provider transactions as notification feed items.
func (h *Handler) Notifications(c *fiber.Ctx) error {
	transactions, err := h.ledger.GetTransactions(c.UserContext(), middleware.ExtToken(c))
	if err != nil {
		return fiber.NewError(http.StatusBadGateway, "transactions unavailable")
	}

	items := make([]notificationItem, 0, len(transactions))
	for _, t := range transactions {
		title := "Списание звезд"
		if t.Amount > 0 {
			title = "Начисление звезд"
		}
		items = append(items, notificationItem{
			ID:          uuid.New(),
			Title:       title,
			Description: fmt.Sprintf("%s (%d)", t.Descr, t.Amount),
			Date:        t.Date,
			IsRead:      true,
		})
	}
	return c.Status(http.StatusOK).JSON(items)
}
