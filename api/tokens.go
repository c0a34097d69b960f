package api

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Access tokens are valid for 7 days, refresh tokens for roughly 3 months,
// matching what the mobile clients expect.
const (
	AccessTokenTTL  = 7 * 24 * time.Hour
	RefreshTokenTTL = 90 * 24 * time.Hour
)

// GenerateAccessToken signs a short-lived access token for the given participant id
func GenerateAccessToken(id string) (string, error) {
	return signToken(id, AccessTokenTTL, os.Getenv("JWT_SECRET"))
}

// GenerateRefreshToken signs a long-lived refresh token for the given participant id
func GenerateRefreshToken(id string) (string, error) {
	return signToken(id, RefreshTokenTTL, os.Getenv("JWT_REFRESH_SECRET"))
}

func signToken(id string, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is not set")
	}
	claims := jwt.MapClaims{
		"id":  id,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseRefreshToken verifies a refresh token and returns the participant id it carries
func ParseRefreshToken(tokenString string) (string, error) {
	return parseToken(tokenString, os.Getenv("JWT_REFRESH_SECRET"))
}

func parseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token, %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return "", fmt.Errorf("token missing id claim")
	}
	return id, nil
}

func parseAccessToken(r *http.Request) (string, error) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		return "", fmt.Errorf("missing bearer token")
	}
	return parseToken(splitToken[1], os.Getenv("JWT_SECRET"))
}
