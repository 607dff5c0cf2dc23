package user

import (
	"strings"
	"time"
)

// User mirrors an account managed by the external identity provider. Rows
// are written only by the signup webhook, never by request handlers.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns "First Last", falling back to "Unknown" when both
// name parts are blank.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "Unknown"
	}
	return name
}
