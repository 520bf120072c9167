package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsStaff  bool   `json:"is_staff"`
}

type SignupRequest struct {
	Body struct {
		Username string `json:"username" required:"true" minLength:"3"`
		Email    string `json:"email" format:"email" required:"true"`
		Password string `json:"password" required:"true" minLength:"8"`
		Role     string `json:"role" enum:"Organizer,Participant" required:"true"`
	}
}

type SessionResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      UserResponse
}

func (h *AuthHandler) HandleSignup(ctx context.Context, input *SignupRequest) (*SessionResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	user := models.User{
		Username:     input.Body.Username,
		Email:        input.Body.Email,
		PasswordHash: string(hash),
		Role:         input.Body.Role,
	}

	var existing models.User
	if err := h.db.Where("username = ?", user.Username).First(&existing).Error; err == nil {
		return nil, huma.Error409Conflict("Username is already taken")
	} else if err != gorm.ErrRecordNotFound {
		return nil, huma.Error500InternalServerError("Database error")
	}

	if err := h.db.Create(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create user")
	}

	return h.sessionResponse(user)
}

type LoginRequest struct {
	Body struct {
		Username string `json:"username" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*SessionResponse, error) {
	var user models.User
	if err := h.db.Where("username = ?", input.Body.Username).First(&user).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)); err != nil {
		return nil, huma.Error401Unauthorized("Invalid username or password")
	}
	return h.sessionResponse(user)
}

func (h *AuthHandler) sessionResponse(user models.User) (*SessionResponse, error) {
	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}
	res := &SessionResponse{SetCookie: sessionCookie(token)}
	res.Body = UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		IsStaff:  user.IsStaff,
	}
	return res, nil
}

type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

func (h *AuthHandler) HandleLogout(ctx context.Context, input *struct{}) (*LogoutResponse, error) {
	res := &LogoutResponse{
		SetCookie: http.Cookie{
			Name:     "auth_token",
			Value:    "",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Path:     "/",
		},
	}
	res.Body.Message = "Logged out"
	return res, nil
}

type MeRequest struct {
	AuthInput
}

type MeResponse struct {
	Body UserResponse
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	user, err := h.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	return &MeResponse{Body: UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		IsStaff:  user.IsStaff,
	}}, nil
}
