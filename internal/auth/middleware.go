package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionRefresh keeps interactive sessions alive: when a request carries a
// valid auth cookie that is more than halfway through its lifetime, a fresh
// token is written back on the response. Authorization itself happens in the
// operations; requests without a usable cookie pass through untouched.
func (h *AuthHandler) SessionRefresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("auth_token"); err == nil {
			if refreshed, ok := h.refreshedToken(cookie.Value, time.Now()); ok {
				c := sessionCookie(refreshed)
				http.SetCookie(w, &c)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// refreshedToken re-issues a valid token once less than half of TokenDuration
// remains.
func (h *AuthHandler) refreshedToken(tokenString string, now time.Time) (string, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return "", false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return "", false
	}
	if time.Unix(int64(exp), 0).Sub(now) >= TokenDuration/2 {
		return "", false
	}
	refreshed, err := h.GenerateToken(uint(userIDFloat))
	if err != nil {
		return "", false
	}
	return refreshed, true
}
