package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"

	"github.com/bookmarkd/bookmarkd/pkg/config"
)

// TokenManager issues and verifies session tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager from auth configuration
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
	}
}

// CreateToken issues an HS256 token carrying the user id
func (m *TokenManager) CreateToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"authorized": true,
		"user_id":    userID,
		"exp":        time.Now().Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies a token string and returns the user id it carries
func (m *TokenManager) ParseToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	uid, err := strconv.ParseFloat(fmt.Sprintf("%v", claims["user_id"]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user_id claim")
	}
	return int64(uid), nil
}

// ExtractTokenID pulls the bearer token from a request and returns the
// user id it carries
func (m *TokenManager) ExtractTokenID(r *http.Request) (int64, error) {
	bearer := r.Header.Get("Authorization")
	parts := strings.Split(bearer, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, fmt.Errorf("missing bearer token")
	}
	return m.ParseToken(parts[1])
}
