package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/star-marathon/star_backend/internal/logging"
	"github.com/star-marathon/star_backend/internal/profile"
	"github.com/star-marathon/star_backend/internal/storm"
)

type fakeExchanger struct {
	result storm.ExchangeResult
	calls  int
}

func (f *fakeExchanger) Exchange(context.Context, int64, string, string, string) storm.ExchangeResult {
	f.calls++
	return f.result
}

const masterPIN = "999999999"

func newTestService(exchanger storm.Exchanger, repo profile.Repository) (*Service, *TokenIssuer) {
	tokens := NewTokenIssuer("test-secret")
	return NewService(exchanger, repo, tokens, masterPIN, logging.Discard()), tokens
}

func TestLoginFirstTime(t *testing.T) {
	repo := profile.NewMemoryRepository()
	svc, tokens := newTestService(&fakeExchanger{result: storm.ExchangeResult{SessionJWT: "S1", AuthJWT: "A1"}}, repo)

	res, err := svc.Login(context.Background(), profile.LoginInput{TgID: 42}, "1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != profile.RoleUser {
		t.Fatalf("expected user role, got %q", res.Role)
	}
	if res.Language != "ru" {
		t.Fatalf("expected default language, got %q", res.Language)
	}

	session, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if session.UserID != 42 || session.ExtToken != "S1" {
		t.Fatalf("unexpected session: %+v", session)
	}

	stored, err := repo.Find(context.Background(), 42)
	if err != nil {
		t.Fatalf("find profile: %v", err)
	}
	if stored.ExternalAuthJWT != "A1" || stored.Role != profile.RoleUser || stored.PhoneNumber != "" {
		t.Fatalf("unexpected stored profile: %+v", stored)
	}
}

func TestLoginAdminBypassOnExchangeFailure(t *testing.T) {
	repo := profile.NewMemoryRepository()
	repo.Save(context.Background(), profile.Profile{ID: 42, Role: profile.RoleUser, LanguageCode: "ru"})
	svc, tokens := newTestService(&fakeExchanger{}, repo)

	res, err := svc.Login(context.Background(), profile.LoginInput{TgID: 42}, masterPIN)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != profile.RoleAdmin {
		t.Fatalf("expected admin escalation, got %q", res.Role)
	}

	session, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if session.ExtToken != BypassSessionToken {
		t.Fatalf("expected bypass sentinel, got %q", session.ExtToken)
	}
}

func TestLoginDeniedWithoutBypass(t *testing.T) {
	repo := profile.NewMemoryRepository()
	svc, _ := newTestService(&fakeExchanger{}, repo)

	_, err := svc.Login(context.Background(), profile.LoginInput{TgID: 7}, "0000")
	if !errors.Is(err, ErrAuthenticationDenied) {
		t.Fatalf("expected denial, got %v", err)
	}

	if _, err := repo.Find(context.Background(), 7); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("profile must not be created on denial, got %v", err)
	}
}

func TestLoginBypassDisabledByEmptyPIN(t *testing.T) {
	repo := profile.NewMemoryRepository()
	svc := NewService(&fakeExchanger{}, repo, NewTokenIssuer("test-secret"), "", logging.Discard())

	// An empty submitted PIN must not match a disabled (empty) bypass PIN.
	if _, err := svc.Login(context.Background(), profile.LoginInput{TgID: 7}, ""); !errors.Is(err, ErrAuthenticationDenied) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestLoginMasterPINWithWorkingExchange(t *testing.T) {
	repo := profile.NewMemoryRepository()
	svc, tokens := newTestService(&fakeExchanger{result: storm.ExchangeResult{SessionJWT: "S1", AuthJWT: "A1"}}, repo)

	res, err := svc.Login(context.Background(), profile.LoginInput{TgID: 42}, masterPIN)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != profile.RoleAdmin {
		t.Fatalf("expected admin role, got %q", res.Role)
	}

	// A real session credential wins over the bypass sentinel.
	session, _ := tokens.Verify(res.Token)
	if session.ExtToken != "S1" {
		t.Fatalf("expected real credential, got %q", session.ExtToken)
	}
}

func TestLoginBypassPreservesStoredCredential(t *testing.T) {
	repo := profile.NewMemoryRepository()
	repo.Save(context.Background(), profile.Profile{ID: 42, Role: profile.RoleUser, ExternalAuthJWT: "A1", LanguageCode: "ru"})
	svc, _ := newTestService(&fakeExchanger{}, repo)

	if _, err := svc.Login(context.Background(), profile.LoginInput{TgID: 42}, masterPIN); err != nil {
		t.Fatalf("login: %v", err)
	}

	stored, _ := repo.Find(context.Background(), 42)
	if stored.ExternalAuthJWT != "A1" {
		t.Fatalf("stored credential erased by empty exchange result: %q", stored.ExternalAuthJWT)
	}
}

func TestLoginPartialExchangePersistsAuthJWT(t *testing.T) {
	repo := profile.NewMemoryRepository()
	svc, _ := newTestService(&fakeExchanger{result: storm.ExchangeResult{AuthJWT: "A2"}}, repo)

	// Session denied but registration succeeded; only the master PIN gets in.
	if _, err := svc.Login(context.Background(), profile.LoginInput{TgID: 42}, masterPIN); err != nil {
		t.Fatalf("login: %v", err)
	}

	stored, _ := repo.Find(context.Background(), 42)
	if stored.ExternalAuthJWT != "A2" {
		t.Fatalf("partially obtained credential not persisted: %q", stored.ExternalAuthJWT)
	}
}

type failingRepo struct{ profile.Repository }

func (failingRepo) Save(context.Context, profile.Profile) error {
	return errors.New("disk on fire")
}

func TestLoginPersistenceFailureIsFatal(t *testing.T) {
	repo := failingRepo{profile.NewMemoryRepository()}
	svc, _ := newTestService(&fakeExchanger{result: storm.ExchangeResult{SessionJWT: "S1", AuthJWT: "A1"}}, repo)

	res, err := svc.Login(context.Background(), profile.LoginInput{TgID: 42}, "1234")
	if err == nil {
		t.Fatal("expected persistence failure")
	}
	if errors.Is(err, ErrAuthenticationDenied) {
		t.Fatal("persistence failure must not masquerade as denial")
	}
	if res.Token != "" {
		t.Fatal("no token may be issued when the profile write fails")
	}
}
