package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/star-marathon/star_backend/internal/profile"
	"github.com/star-marathon/star_backend/internal/storm"
)

// BypassSessionToken is the sentinel embedded in the local token when the
// admin bypass triggers. It is not a real provider credential; provider-backed
// endpoints will fail against it, which is the accepted trade-off for keeping
// the admin area reachable while the provider is down.
const BypassSessionToken = "admin_bypass_token"

// ErrAuthenticationDenied means neither the external exchange nor the admin
// bypass authorized the login. No profile mutation happens on this path.
var ErrAuthenticationDenied = errors.New("authentication denied")

// Service orchestrates the external credential exchange, the local profile
// upsert and session token issuance.
type Service struct {
	storm     storm.Exchanger
	profiles  profile.Repository
	tokens    *TokenIssuer
	bypassPIN string
	logger    *slog.Logger
}

// NewService wires the login orchestrator.
func NewService(exchanger storm.Exchanger, profiles profile.Repository, tokens *TokenIssuer, bypassPIN string, logger *slog.Logger) *Service {
	return &Service{storm: exchanger, profiles: profiles, tokens: tokens, bypassPIN: bypassPIN, logger: logger}
}

// LoginResult is returned to the client on a successful login.
type LoginResult struct {
	Token    string
	Role     string
	Language string
}

// Login runs the full flow: exchange credentials upstream, apply the admin
// bypass policy, upsert the local profile and issue a session token. A profile
// persistence failure is fatal; no token is issued for a half-written profile.
func (s *Service) Login(ctx context.Context, in profile.LoginInput, pin string) (LoginResult, error) {
	res := s.storm.Exchange(ctx, in.TgID, pin, in.Username, in.Phone)
	asAdmin := s.isAdminBypass(pin)

	sessionJWT := res.SessionJWT
	if !res.SessionGranted() {
		if !asAdmin {
			s.logger.Info("login denied", slog.Int64("tg_id", in.TgID))
			return LoginResult{}, ErrAuthenticationDenied
		}
		// Provider unreachable or credentials rejected, but the master PIN
		// matched: let the operator in with a placeholder credential.
		s.logger.Warn("admin bypass engaged", slog.Int64("tg_id", in.TgID))
		sessionJWT = BypassSessionToken
	}

	var existing *profile.Profile
	switch current, err := s.profiles.Find(ctx, in.TgID); {
	case err == nil:
		existing = &current
	case errors.Is(err, profile.ErrNotFound):
	default:
		return LoginResult{}, fmt.Errorf("find profile: %w", err)
	}

	merged := profile.Merge(existing, in, asAdmin, res.AuthJWT)
	if err := s.profiles.Save(ctx, merged); err != nil {
		return LoginResult{}, fmt.Errorf("save profile: %w", err)
	}

	token, err := s.tokens.Issue(merged, sessionJWT)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("login succeeded",
		slog.Int64("tg_id", in.TgID),
		slog.String("role", merged.Role),
		slog.Bool("bypass", sessionJWT == BypassSessionToken),
	)
	return LoginResult{Token: token, Role: merged.Role, Language: merged.LanguageCode}, nil
}

// isAdminBypass is the whole bypass policy, kept separate from the exchange
// path so it can be disabled (empty configured PIN) or rotated independently.
func (s *Service) isAdminBypass(pin string) bool {
	return s.bypassPIN != "" && pin == s.bypassPIN
}

// HasPhone reports whether a profile exists and already carries a captured
// phone number. Used by the mini-app to decide whether to send the user to
// the bot's share-contact flow.
func (s *Service) HasPhone(ctx context.Context, tgID int64) (string, bool, error) {
	p, err := s.profiles.Find(ctx, tgID)
	if errors.Is(err, profile.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.PhoneNumber, p.PhoneNumber != "", nil
}
