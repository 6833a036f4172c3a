package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sproutapp/forum/auth"
	"github.com/sproutapp/forum/utils"
)

// contextIdentityKey is the key used to store the authenticated identity in Gin context.
const contextIdentityKey = "identity"

// AuthRequired ensures the request carries a valid bearer token and stores
// the verified identity in the request context.
func AuthRequired(gate auth.Gate) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		identity, err := gate.Verify(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(contextIdentityKey, identity)
		ctx.Next()
	}
}

// CurrentIdentity returns the identity placed in the context by AuthRequired.
func CurrentIdentity(ctx *gin.Context) (auth.Identity, bool) {
	v, ok := ctx.Get(contextIdentityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}
