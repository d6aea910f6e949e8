package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionMaxAge = 7 * 24 * 60 * 60

// SetUpMiddleware installs the session cookie store and the CORS policy.
// KEY signs the cookie. CORS_ORIGINS (comma separated) narrows the allowed
// origins; unset means any origin, the web and mobile clients move hosts
// too often to pin them in code.
func SetUpMiddleware(r *gin.Engine) {
	store := cookie.NewStore([]byte(os.Getenv("KEY")))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("playnet_session", store))

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))
}
