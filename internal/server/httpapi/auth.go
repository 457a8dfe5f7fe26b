package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/server/services"
)

type signUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (rt *Router) handleSignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid signup payload")
		return
	}
	user, err := rt.users.SignUp(c.Request.Context(), services.SignUpRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (rt *Router) setAuthCookies(c *gin.Context, pair *services.TokenPair) {
	access := int(rt.cfg.AccessTokenValidityDuration.Seconds())
	refresh := int(rt.cfg.RefreshTokenValidityDuration.Seconds())
	c.SetCookie(accessTokenCookie, pair.AccessToken, access, "/", "", false, true)
	c.SetCookie("refreshToken", pair.RefreshToken, refresh, "/api/auth", "", false, true)
}

func (rt *Router) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid login payload")
		return
	}
	user, pair, err := rt.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	rt.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":         toUserResponse(user),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (rt *Router) handleLogout(c *gin.Context) {
	if token, err := c.Cookie("refreshToken"); err == nil && token != "" {
		if err := rt.users.Logout(c.Request.Context(), token); err != nil {
			rt.logger.Warn(c.Request.Context(), "logout cleanup failed", "error", err)
		}
	}
	c.SetCookie(accessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie("refreshToken", "", -1, "/api/auth", "", false, true)
	c.Status(http.StatusNoContent)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (rt *Router) handleRefresh(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	token := req.RefreshToken
	if token == "" {
		token, _ = c.Cookie("refreshToken")
	}
	if token == "" {
		badRequest(c, "missing refresh token")
		return
	}
	pair, err := rt.users.RefreshToken(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}
	rt.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (rt *Router) handleVerifyEmail(c *gin.Context) {
	if err := rt.users.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (rt *Router) handleForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := rt.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (rt *Router) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if err := rt.users.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func (rt *Router) handleMe(c *gin.Context) {
	user, err := rt.users.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
