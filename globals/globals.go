package globals

import (
	"context"
	"os"
)

var JwtSecret = []byte(jwtSecretFromEnv())

func jwtSecretFromEnv() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	// development fallback only
	return "cropshare_dev_secret"
}

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const RoleKey ContextKey = "role"

// TokenCookieName is the HTTP-only cookie carrying the access token.
const TokenCookieName = "token"

var Ctx = context.Background()
