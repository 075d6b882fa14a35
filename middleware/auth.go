package middleware

import (
	"net/http"
	"strings"

	"catalog-admin/clients"
	"catalog-admin/models"
	"catalog-admin/utils"

	"github.com/gin-gonic/gin"
)

const (
	TokenCookie = "token"
	UserCookie  = "user"

	ctxUserKey = "session_user"
)

// RouteGuard redirects requests under a protected prefix to loginPath when
// the token cookie is missing. Everything else passes through unchanged.
func RouteGuard(prefixes []string, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isProtected(c.Request.URL.Path, prefixes) {
			c.Next()
			return
		}

		if token, err := c.Cookie(TokenCookie); err != nil || token == "" {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}

		c.Next()
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RequireToken guards the JSON API. The bearer token is carried on the request
// context for remote calls and the decoded user is stored on the gin context.
func RequireToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Authentication required",
			})
			c.Abort()
			return
		}

		raw, err := c.Cookie(UserCookie)
		if err != nil || raw == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Authentication required",
			})
			c.Abort()
			return
		}

		user, err := utils.ParseUser(raw, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid or expired session",
				Error:   err.Error(),
			})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(clients.WithToken(c.Request.Context(), token))
		c.Set(ctxUserKey, *user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireToken.
func CurrentUser(c *gin.Context) (models.SessionUser, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.SessionUser{}, false
	}
	user, ok := v.(models.SessionUser)
	return user, ok
}
