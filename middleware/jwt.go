package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func jwtKey() []byte {
	return []byte(os.Getenv("KEY"))
}

// GenerateJWT issues the bearer token handed out at login. The email is the
// only claim the rest of the API needs.
func GenerateJWT(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"Email": email,
		"exp":   jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
	})
	return token.SignedString(jwtKey())
}

func parseEmail(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtKey(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	email, ok := claims["Email"].(string)
	if !ok || email == "" {
		return "", errors.New("email claim missing")
	}
	return email, nil
}

// authenticatedEmail resolves the acting user's email from the Bearer token
// or, failing that, the cookie session.
func authenticatedEmail(c *gin.Context) (string, error) {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return parseEmail(strings.TrimPrefix(auth, "Bearer "))
	}

	session := sessions.Default(c)
	if v := session.Get("Email"); v != nil {
		if email, ok := v.(string); ok && email != "" {
			return email, nil
		}
	}
	return "", errors.New("not authenticated")
}

// JWT_decoder returns the authenticated user's email. On failure it writes
// the 401 itself so callers only need a bare return.
func JWT_decoder(c *gin.Context) (string, error) {
	email, err := authenticatedEmail(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", err
	}
	return email, nil
}

// Socketio_JWT_decoder extracts and validates the token a socket.io client
// sends in its handshake auth data.
func Socketio_JWT_decoder(authData map[string]interface{}) (string, error) {
	raw, ok := authData["authorization"].(string)
	if !ok {
		return "", errors.New("missing authorization field")
	}
	return parseEmail(strings.TrimPrefix(raw, "Bearer "))
}
