package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims carries the chat binding extracted from a validated token.
type Claims struct {
	ChatID   int64
	Username string
	Exp      int64
}

// Service issues and validates the JWT tokens the chat bridge uses to
// call the gateway on behalf of a chat.
type Service struct {
	jwtSecret   []byte
	adminSecret string // bcrypt hash of the token-issuing secret
	tokenExp    time.Duration
}

// NewService creates an authentication service. adminSecret is the
// bcrypt hash the issuing secret is checked against.
func NewService(jwtSecret, adminSecret string, tokenExp time.Duration) *Service {
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}
	return &Service{
		jwtSecret:   []byte(jwtSecret),
		adminSecret: adminSecret,
		tokenExp:    tokenExp,
	}
}

// CheckSecret checks the presented issuing secret against the stored hash.
func (s *Service) CheckSecret(secret string) bool {
	if s.adminSecret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.adminSecret), []byte(secret)) == nil
}

// HashSecret hashes a secret for storage in configuration.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(bytes), nil
}

// GenerateToken generates a JWT bound to one chat.
func (s *Service) GenerateToken(chatID int64, username string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"chat_id":  chatID,
		"username": username,
		"exp":      now.Add(s.tokenExp).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the chat claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	chatID, ok := claims["chat_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Claims{
		ChatID:   int64(chatID),
		Username: username,
		Exp:      int64(exp),
	}, nil
}

// ExtractTokenFromHeader extracts a bearer token from an Authorization
// header value.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
