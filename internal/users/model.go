package users

import "time"

// Roles a user can hold on the platform.
const (
	RoleCandidate = "CANDIDATE"
	RoleEmployer  = "EMPLOYER"
)

type User struct {
	ID string `json:"id"`

	// AuthSubject is the external identity key ("google:<sub>"). The ID
	// itself is a UUID minted on first login.
	AuthSubject string `json:"-"`

	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       string    `json:"role"`
	EmailOptIn bool      `json:"emailOptIn"`
	CreatedAt  time.Time `json:"createdAt"`
}
