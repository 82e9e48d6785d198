package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/star-marathon/star_backend/internal/profile"
	"github.com/star-marathon/star_backend/internal/storm"
)

func newHandlerApp(exchanger storm.Exchanger, repo profile.Repository) *fiber.App {
	svc, _ := newTestService(exchanger, repo)
	h := NewHandler(svc)

	app := fiber.New()
	app.Post("/auth/login", h.Login)
	app.Get("/auth/check-phone", h.CheckPhone)
	return app
}

func TestLoginEndpointSuccess(t *testing.T) {
	app := newHandlerApp(&fakeExchanger{result: storm.ExchangeResult{SessionJWT: "S1", AuthJWT: "A1"}}, profile.NewMemoryRepository())

	req := httptest.NewRequest(fiber.MethodPost, "/auth/login", strings.NewReader(`{"tgId":42,"pin":"1234","username":"alice"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var decoded loginResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.Token == "" || decoded.Role != profile.RoleUser || decoded.Language != "ru" {
		t.Fatalf("unexpected response: %+v", decoded)
	}
}

func TestLoginEndpointDeniedShape(t *testing.T) {
	app := newHandlerApp(&fakeExchanger{}, profile.NewMemoryRepository())

	req := httptest.NewRequest(fiber.MethodPost, "/auth/login", strings.NewReader(`{"tgId":42,"pin":"0000"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var decoded map[string]string
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("denial body must be JSON, got %q: %v", body, err)
	}
	// One generic message for wrong PIN and provider failure alike.
	if decoded["error"] != "invalid pin or provider error" {
		t.Fatalf("unexpected error message: %q", decoded["error"])
	}
}

func TestLoginEndpointRequiresTgID(t *testing.T) {
	app := newHandlerApp(&fakeExchanger{}, profile.NewMemoryRepository())

	req := httptest.NewRequest(fiber.MethodPost, "/auth/login", strings.NewReader(`{"pin":"1234"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestCheckPhoneEndpoint(t *testing.T) {
	repo := profile.NewMemoryRepository()
	repo.Save(context.Background(), profile.Profile{ID: 42, PhoneNumber: "+79990000000"})
	app := newHandlerApp(&fakeExchanger{}, repo)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/auth/check-phone?tgId=42", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var decoded struct {
		HasPhone bool   `json:"hasPhone"`
		Phone    string `json:"phone"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !decoded.HasPhone || decoded.Phone != "+79990000000" {
		t.Fatalf("unexpected response: %+v", decoded)
	}
}
