package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/profile"
)

// Handler exposes the login and phone-check endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	TgID     int64  `json:"tgId"`
	PIN      string `json:"pin"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Language string `json:"language"`
}

// Login exchanges a Telegram id and loyalty PIN for a local session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.TgID == 0 {
		return fiber.NewError(http.StatusBadRequest, "tgId is required")
	}

	result, err := h.svc.Login(c.UserContext(), profile.LoginInput{TgID: req.TgID, Username: req.Username, Phone: req.Phone}, req.PIN)
	if err != nil {
		if errors.Is(err, ErrAuthenticationDenied) {
			// One generic message for both wrong-PIN and provider-down so the
			// response does not hint which one it was.
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid pin or provider error"})
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	return c.Status(http.StatusOK).JSON(loginResponse{Token: result.Token, Role: result.Role, Language: result.Language})
}

// CheckPhone reports whether a profile already has a captured phone number.
func (h *Handler) CheckPhone(c *fiber.Ctx) error {
	tgID := c.QueryInt("tgId")
	if tgID == 0 {
		return fiber.NewError(http.StatusBadRequest, "tgId is required")
	}

	phone, has, err := h.svc.HasPhone(c.UserContext(), int64(tgID))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "phone lookup failed")
	}
	if !has {
		return c.Status(http.StatusOK).JSON(fiber.Map{"hasPhone": false})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"hasPhone": true, "phone": phone})
}
