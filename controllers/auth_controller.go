package controllers

import (
	"net/http"

	"catalog-admin/config"
	"catalog-admin/middleware"
	"catalog-admin/models"
	"catalog-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	Auth   *services.AuthService
	Config *config.Config
	Log    logrus.FieldLogger
}

// Login godoc
// @Summary Login
// @Description Authenticate against the catalog platform and set the user and token cookies
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	result, err := ctrl.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ctrl.Log.WithError(err).WithField("email", req.Email).Warn("login failed")
		respondError(c, ctrl.Log, err)
		return
	}

	maxAge := int(ctrl.Auth.CookieTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.UserCookie, result.UserCookie, maxAge, "/", "", ctrl.Config.CookieSecure, true)
	c.SetCookie(middleware.TokenCookie, result.Token, maxAge, "/", "", ctrl.Config.CookieSecure, true)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    models.LoginResponse{User: result.User},
	})
}

// Logout godoc
// @Summary Logout
// @Description Remove the user and token cookies
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.UserCookie, "", -1, "/", "", ctrl.Config.CookieSecure, true)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", ctrl.Config.CookieSecure, true)
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Logged out"})
}

// Me godoc
// @Summary Current user
// @Description Get the user stored in the session cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "User retrieved", Data: user})
}
