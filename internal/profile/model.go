package profile

import "time"

const (
	// RoleUser is the default role for a freshly created profile.
	RoleUser = "user"
	// RoleAdmin unlocks the admin area. Escalation is one-way: this package
	// never downgrades an admin back to user.
	RoleAdmin = "admin"

	defaultLanguage = "ru"
)

// Profile is the locally owned identity record, keyed by Telegram user id.
// The star balance is not here on purpose: it lives at the loyalty provider
// and is read through the credential cached in ExternalAuthJWT.
type Profile struct {
	ID              int64
	Username        string
	Role            string
	PhoneNumber     string
	ExternalAuthJWT string
	LanguageCode    string
	AvatarURL       string
	CreatedAt       time.Time
}

// IsAdmin reports whether the profile holds the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }
