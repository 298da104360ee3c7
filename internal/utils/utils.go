package utils

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// context keys
type ctxKey string

const (
	CtxUserIDKey ctxKey = "user_id"
	CtxRoleKey   ctxKey = "role"
)

// CustomClaims is the token payload: the user id and role, plus the
// registered claims for expiry.
type CustomClaims struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// safer subject helper
func (c *CustomClaims) SubjectInt() int64 {
	v, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseTTL parses TTL such as "15m", "1h", "20s", "30" (minutes)
func ParseTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 15 * time.Minute, nil
	}

	if strings.HasSuffix(ttlStr, "m") ||
		strings.HasSuffix(ttlStr, "h") ||
		strings.HasSuffix(ttlStr, "s") {
		return time.ParseDuration(ttlStr)
	}

	// fallback: minutes
	min, err := strconv.Atoi(ttlStr)
	if err != nil {
		return 0, err
	}
	return time.Duration(min) * time.Minute, nil
}

func GenerateToken(userID int64, role, secret string, ttl time.Duration) (string, int64, error) {
	if secret == "" {
		return "", 0, errors.New("secret not configured")
	}
	if ttl <= 0 {
		return "", 0, errors.New("ttl must be positive")
	}

	now := time.Now()
	expTime := now.Add(ttl)

	claims := CustomClaims{
		ID:   userID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expTime.Unix(), nil
}

func VerifyToken(tokenStr, secret string) (*CustomClaims, error) {
	if secret == "" {
		return nil, errors.New("secret not configured")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))

	var claims CustomClaims

	_, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		return nil, errors.New("token expired")
	}
	if claims.ID == 0 {
		claims.ID = claims.SubjectInt()
	}
	if claims.ID == 0 || claims.Role == "" {
		return nil, errors.New("token missing identity")
	}

	return &claims, nil
}

// WithIdentity stores the verified caller in ctx.
func WithIdentity(ctx context.Context, userID int64, role string) context.Context {
	ctx = context.WithValue(ctx, CtxUserIDKey, userID)
	return context.WithValue(ctx, CtxRoleKey, role)
}

// Identity returns the caller placed in ctx by the auth middleware.
func Identity(ctx context.Context) (int64, string, bool) {
	id, ok := ctx.Value(CtxUserIDKey).(int64)
	if !ok {
		return 0, "", false
	}
	role, _ := ctx.Value(CtxRoleKey).(string)
	return id, role, true
}

// ParseDate accepts YYYY-MM-DD (as sent by date inputs) or RFC3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("invalid date format, expected YYYY-MM-DD")
}
