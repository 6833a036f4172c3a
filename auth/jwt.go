package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the JWT claims used by the forum.
type Claims struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTGate validates HS256 tokens signed with a shared secret.
type JWTGate struct {
	secret []byte
}

// NewJWTGate creates a Gate backed by the given signing secret.
func NewJWTGate(secret string) *JWTGate {
	return &JWTGate{secret: []byte(secret)}
}

// Verify parses and validates a token, returning the embedded identity.
func (g *JWTGate) Verify(tokenStr string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, errors.New("invalid token claims")
	}

	role := claims.Role
	if role == "" {
		role = RoleMember
	}
	return Identity{UserID: claims.UserID, Name: claims.Name, Role: role}, nil
}

// Issue signs a token for the given identity, valid for the duration.
func (g *JWTGate) Issue(id Identity, duration time.Duration) (string, error) {
	claims := Claims{
		UserID: id.UserID,
		Name:   id.Name,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}
