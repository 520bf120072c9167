package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/campus-events/eventhub-api/internal/config"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const TokenDuration = 24 * time.Hour

type AuthHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{cfg: cfg, db: db}
}

// AuthInput carries the credentials accepted on protected operations: the
// session cookie for interactive users, or an API key header for check-in
// stations and other non-interactive clients.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
	APIKey string `header:"X-API-KEY" doc:"API key for non-interactive clients" required:"false"`
}

// Authorize resolves the calling user from an API key or JWT cookie.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (uint, error) {
	if input.APIKey != "" {
		var keyModel models.APIKey
		if err := h.db.Where("key = ?", input.APIKey).First(&keyModel).Error; err == nil {
			if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
				return 0, huma.Error401Unauthorized("API key expired")
			}
			h.db.Model(&keyModel).Update("last_used_at", time.Now())
			return keyModel.UserID, nil
		}
	}

	tokenString, err := authCookieValue(input.Cookie)
	if err != nil {
		return 0, huma.Error401Unauthorized("No credentials provided")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	return uint(userIDFloat), nil
}

// CurrentUser is Authorize plus the user row.
func (h *AuthHandler) CurrentUser(ctx context.Context, input AuthInput) (models.User, error) {
	userID, err := h.Authorize(ctx, input)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return models.User{}, huma.Error404NotFound("User not found")
	}
	return user, nil
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func authCookieValue(cookieHeader string) (string, error) {
	header := http.Header{}
	header.Add("Cookie", cookieHeader)
	req := http.Request{Header: header}
	c, err := req.Cookie("auth_token")
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

func sessionCookie(token string) http.Cookie {
	return http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}
}
