package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleAthlete Role = "athlete"
)

// ParseRole accepts the three assignable roles; anything else reports false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleTrainer:
		return RoleTrainer, true
	case RoleAthlete:
		return RoleAthlete, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}

// HomePath is the dashboard subtree a role lands in.
func (r Role) HomePath() string {
	return "/dashboard/" + string(r)
}

const DefaultLocale = "en"

var SupportedLocales = []string{"en", "es", "ca"}

func IsSupportedLocale(locale string) bool {
	for _, supported := range SupportedLocales {
		if supported == locale {
			return true
		}
	}
	return false
}

type AuthUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the application record for a user. An empty Role means the
// profile has not been given access to any dashboard subtree yet.
type Profile struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) HasRole() bool {
	return p != nil && p.Role.Valid()
}
