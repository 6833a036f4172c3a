// Package auth verifies bearer tokens and exposes the caller identity. It is
// the only place the service trusts for user identity; credential issuance
// lives outside this system.
package auth

// Role values carried in verified tokens.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID uint
	Name   string
	Role   string
}

// Moderator reports whether the identity may perform moderator-only actions.
func (id Identity) Moderator() bool { return id.Role == RoleModerator }

// Gate turns a bearer token into a user identity or an error.
type Gate interface {
	Verify(token string) (Identity, error)
}
