// Package middleware provides authentication, logging, metrics, tracing and
// rate limiting middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nourish/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "nourish-api"
	tokenAudience = "nourish-client"

	blacklistPrefix = "blacklist:"
)

var (
	errMissingToken = errors.New("authorization required")
	errInvalidToken = errors.New("invalid or expired token")
	errRevoked      = errors.New("token has been revoked")
)

// Claims is the parsed subset of an access token the application relies on.
type Claims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// Auth issues and verifies HMAC-signed access tokens. Revocation is checked
// against Redis when a client is configured.
type Auth struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
}

// NewAuth returns an Auth bound to secret. rdb may be nil.
func NewAuth(secret string, ttl time.Duration, rdb *redis.Client) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, rdb: rdb}
}

// IssueToken creates a signed token whose subject is userID.
func (a *Auth) IssueToken(userID uint, handle string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    strconv.FormatUint(uint64(userID), 10),
		"handle": handle,
		"iss":    tokenIssuer,
		"aud":    tokenAudience,
		"exp":    now.Add(a.ttl).Unix(),
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"jti":    uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken validates tokenString and extracts its claims.
func (a *Auth) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, errInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, errInvalidToken
	}

	claims := &Claims{UserID: uint(userID)}
	if jti, ok := mapClaims["jti"].(string); ok {
		claims.JTI = jti
	}
	if exp, expErr := mapClaims.GetExpirationTime(); expErr == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if claims.JTI != "" && a.rdb != nil {
		revoked, rerr := a.rdb.Exists(ctx, blacklistPrefix+claims.JTI).Result()
		if rerr == nil && revoked > 0 {
			return nil, errRevoked
		}
	}
	return claims, nil
}

// Revoke blacklists the token identified by claims until it would have expired.
func (a *Auth) Revoke(ctx context.Context, claims *Claims) error {
	if a.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return a.rdb.Set(ctx, blacklistPrefix+claims.JTI, "1", ttl).Err()
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (a *Auth) authenticate(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return errMissingToken
	}
	claims, err := a.ParseToken(c.UserContext(), tokenString)
	if err != nil {
		return err
	}

	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
	return nil
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.authenticate(c); err != nil {
			msg := "Invalid or expired token"
			switch {
			case errors.Is(err, errMissingToken):
				msg = "Authorization required"
			case errors.Is(err, errRevoked):
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
		}
		return c.Next()
	}
}

// Optional authenticates when a valid token is present and otherwise lets the
// request through as anonymous.
func (a *Auth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_ = a.authenticate(c)
		return c.Next()
	}
}

// UserID returns the authenticated user id stored by Required or Optional.
func UserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}

// TokenClaims returns the claims stored by Required or Optional.
func TokenClaims(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals("claims").(*Claims)
	return claims
}
