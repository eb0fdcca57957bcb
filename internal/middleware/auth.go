package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenIssuer is the iss claim every accepted token must carry.
	TokenIssuer = "microblog-api"
	// TokenAudience is the aud claim every accepted token must carry.
	TokenAudience = "microblog-client"

	revokedTokenPrefix = "blacklist:"
)

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	Secret string
	// Redis, when set, is consulted for revoked token ids.
	Redis *redis.Client
}

// AuthRequired validates the bearer token and stores the requester id in
// c.Locals("userID") and in the request user context.
func AuthRequired(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, jti, err := ParseToken(cfg.Secret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if jti != "" && cfg.Redis != nil {
			revoked, err := cfg.Redis.Exists(c.UserContext(), revokedTokenPrefix+jti).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func parseClaims(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// ParseToken validates an HS256 token and returns its subject as a user id and its jti.
func ParseToken(secret, tokenString string) (uint, string, error) {
	claims, err := parseClaims(secret, tokenString)
	if err != nil {
		return 0, "", err
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, "", err
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, "", fmt.Errorf("invalid user ID in token: %q", sub)
	}

	jti, _ := claims["jti"].(string)
	return uint(userID), jti, nil
}

// IssueToken mints a signed token for userID valid for ttl.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RevokeToken validates tokenString and marks its jti as revoked until the
// token would have expired anyway. It returns the revoked jti.
func RevokeToken(ctx context.Context, rdb *redis.Client, secret, tokenString string) (string, error) {
	if rdb == nil {
		return "", fmt.Errorf("redis client is nil")
	}
	claims, err := parseClaims(secret, tokenString)
	if err != nil {
		return "", err
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return "", fmt.Errorf("token has no jti")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", fmt.Errorf("token has no expiry")
	}
	return jti, rdb.Set(ctx, revokedTokenPrefix+jti, "1", time.Until(exp.Time)).Err()
}
