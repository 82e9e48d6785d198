package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/star-marathon/star_backend/internal/profile"
)

const (
	tokenIssuer   = "StarMarathon"
	tokenAudience = "StarMarathonClient"
	tokenTTL      = 24 * time.Hour
)

// Verification failure taxonomy. Downstream callers reject with unauthorized
// on any of these; the split exists for logging and tests.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenAudience  = errors.New("wrong token issuer or audience")
	ErrTokenMalformed = errors.New("malformed token claims")
)

// Claims is the wire contract of the local session token. ExtToken carries the
// loyalty provider session credential obtained during login; it is never
// recomputed after issuance.
type Claims struct {
	Role     string `json:"role"`
	ExtToken string `json:"ext_token"`
	jwt.RegisteredClaims
}

// Session is the authenticated identity recovered from a verified token.
type Session struct {
	UserID   int64
	Role     string
	ExtToken string
}

// TokenIssuer signs and verifies local session tokens with a process-wide
// symmetric key. Tokens are stateless: there is no revocation, a token stays
// valid until its expiry.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer wraps the signing key loaded at startup.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue builds a signed session token embedding the profile identity and the
// external session credential.
func (t *TokenIssuer) Issue(p profile.Profile, extToken string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:     p.Role,
		ExtToken: extToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify checks the signature, expiry, issuer and audience of a token and
// recovers the session identity.
func (t *TokenIssuer) Verify(token string) (Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Session{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Session{}, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
			return Session{}, ErrTokenAudience
		default:
			return Session{}, ErrTokenMalformed
		}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Session{}, ErrTokenMalformed
	}
	return Session{UserID: userID, Role: claims.Role, ExtToken: claims.ExtToken}, nil
}
