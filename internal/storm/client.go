package storm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Exchanger performs the two-step credential exchange against the loyalty provider.
type Exchanger interface {
	Exchange(ctx context.Context, tgID int64, pin, username, phone string) ExchangeResult
}

// Ledger exposes the balance and transaction operations the provider owns.
type Ledger interface {
	GetProfile(ctx context.Context, sessionJWT string) (Profile, error)
	GetRating(ctx context.Context, sessionJWT string) ([]RatingItem, error)
	GetTransactions(ctx context.Context, sessionJWT string) ([]Transaction, error)
	AddTransaction(ctx context.Context, sessionJWT string, amount int, description string) error
}

// ExchangeResult carries the outcome of the register/login exchange.
// A zero SessionJWT means the provider denied a session; AuthJWT may still be
// populated when registration succeeded but the session call did not.
type ExchangeResult struct {
	SessionJWT string
	AuthJWT    string
}

// SessionGranted reports whether the provider issued a usable session credential.
func (r ExchangeResult) SessionGranted() bool { return r.SessionJWT != "" }

// Profile is the provider's view of the user.
type Profile struct {
	Fio     string `json:"fio"`
	Balance int    `json:"balance"`
}

// RatingItem is a single leaderboard row.
type RatingItem struct {
	Fio     string `json:"fio"`
	Balance int    `json:"balance"`
	Place   int    `json:"place"`
}

// Transaction is a single star accrual or debit.
type Transaction struct {
	Date   string `json:"date"`
	Amount int    `json:"amount"`
	Type   string `json:"type"`
	Descr  string `json:"descr"`
}

// Client talks JSON-over-HTTP to the Storm loyalty API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a Storm API client rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type registerRequest struct {
	PIN      string `json:"pin"`
	TgID     int64  `json:"tg_id"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
}

type registerResponse struct {
	AuthJWT string `json:"auth_jwt"`
}

type loginRequest struct {
	AuthJWT string `json:"auth_jwt"`
}

type loginResponse struct {
	SessionJWT string `json:"session_jwt"`
}

// Exchange runs the two-step register/login flow. Failures collapse into the
// result instead of an error: a register failure or transport fault yields a
// zero result, a login failure keeps the auth credential obtained in step one.
// Neither step is retried.
func (c *Client) Exchange(ctx context.Context, tgID int64, pin, username, phone string) ExchangeResult {
	c.logger.Debug("storm exchange started", slog.Int64("tg_id", tgID))

	var reg registerResponse
	status, err := c.postJSON(ctx, "authRegister", registerRequest{PIN: pin, TgID: tgID, Phone: phone, Username: username}, &reg)
	if err != nil {
		c.logger.Warn("storm authRegister failed", slog.Int64("tg_id", tgID), slog.Any("error", err))
		return ExchangeResult{}
	}
	if status < 200 || status > 299 {
		c.logger.Warn("storm authRegister rejected", slog.Int64("tg_id", tgID), slog.Int("status", status))
		return ExchangeResult{}
	}
	if reg.AuthJWT == "" {
		c.logger.Warn("storm authRegister returned empty auth_jwt", slog.Int64("tg_id", tgID))
		return ExchangeResult{}
	}

	var login loginResponse
	status, err = c.postJSON(ctx, "authLogin", loginRequest{AuthJWT: reg.AuthJWT}, &login)
	if err != nil {
		c.logger.Warn("storm authLogin failed", slog.Int64("tg_id", tgID), slog.Any("error", err))
		return ExchangeResult{}
	}
	if status < 200 || status > 299 {
		// Registration succeeded; the auth credential is still worth persisting.
		c.logger.Warn("storm authLogin rejected", slog.Int64("tg_id", tgID), slog.Int("status", status))
		return ExchangeResult{AuthJWT: reg.AuthJWT}
	}

	return ExchangeResult{SessionJWT: login.SessionJWT, AuthJWT: reg.AuthJWT}
}

type sessionRequest struct {
	SessionJWT string `json:"session_jwt"`
}

// GetProfile fetches the provider-side profile (fio and star balance).
func (c *Client) GetProfile(ctx context.Context, sessionJWT string) (Profile, error) {
	var out Profile
	if err := c.call(ctx, "getProfile", sessionRequest{SessionJWT: sessionJWT}, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// GetRating fetches the leaderboard.
func (c *Client) GetRating(ctx context.Context, sessionJWT string) ([]RatingItem, error) {
	var out []RatingItem
	if err := c.call(ctx, "getRating", sessionRequest{SessionJWT: sessionJWT}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransactions fetches the star transaction history.
func (c *Client) GetTransactions(ctx context.Context, sessionJWT string) ([]Transaction, error) {
	var out []Transaction
	if err := c.call(ctx, "getTransactions", sessionRequest{SessionJWT: sessionJWT}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addTransactionRequest struct {
	SessionJWT string `json:"session_jwt"`
	Amount     int    `json:"amount"`
	Descr      string `json:"descr"`
}

// AddTransaction posts a star accrual (amount > 0) or debit (amount < 0).
func (c *Client) AddTransaction(ctx context.Context, sessionJWT string, amount int, description string) error {
	return c.call(ctx, "addTransaction", addTransactionRequest{SessionJWT: sessionJWT, Amount: amount, Descr: description}, nil)
}

func (c *Client) call(ctx context.Context, endpoint string, body, out any) error {
	status, err := c.postJSON(ctx, endpoint, body, out)
	if err != nil {
		return fmt.Errorf("storm %s: %w", endpoint, err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("storm %s: unexpected status %d", endpoint, status)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if out != nil && res.StatusCode >= 200 && res.StatusCode <= 299 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return res.StatusCode, nil
}
