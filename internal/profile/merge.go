package profile

import "time"

// LoginInput carries the mutable fields a login request may contribute to a profile.
type LoginInput struct {
	TgID     int64
	Username string
	Phone    string
}

// Merge folds a login attempt into an existing profile, or builds a fresh one
// when existing is nil. It is a pure function so the upsert policy can be
// tested without a store.
//
// Rules:
//   - role escalates to admin when asAdmin is set and never downgrades
//   - username, phone and the external auth credential are sticky: an empty
//     incoming value never erases a stored one
func Merge(existing *Profile, in LoginInput, asAdmin bool, authJWT string) Profile {
	if existing == nil {
		role := RoleUser
		if asAdmin {
			role = RoleAdmin
		}
		return Profile{
			ID:              in.TgID,
			Username:        in.Username,
			Role:            role,
			PhoneNumber:     in.Phone,
			ExternalAuthJWT: authJWT,
			LanguageCode:    defaultLanguage,
			CreatedAt:       time.Now().UTC(),
		}
	}

	merged := *existing
	if asAdmin {
		merged.Role = RoleAdmin
	}
	if in.Username != "" {
		merged.Username = in.Username
	}
	if in.Phone != "" {
		merged.PhoneNumber = in.Phone
	}
	if authJWT != "" {
		merged.ExternalAuthJWT = authJWT
	}
	if merged.LanguageCode == "" {
		merged.LanguageCode = defaultLanguage
	}
	return merged
}
