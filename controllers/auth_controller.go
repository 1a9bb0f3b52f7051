package controllers

import (
	"net/http"
	"time"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/middlewares"

	"github.com/gin-gonic/gin"
)

// TokenIssuer is satisfied by utils.TokenIssuer.
type TokenIssuer interface {
	Issue(email, name string) (string, error)
}

type AuthController struct {
	Tokens       TokenIssuer
	CookieMaxAge time.Duration
	Production   bool
}

func NewAuthController(tokens TokenIssuer, cookieMaxAge time.Duration, production bool) *AuthController {
	return &AuthController{Tokens: tokens, CookieMaxAge: cookieMaxAge, Production: production}
}

type tokenRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

func (h *AuthController) setTokenCookie(c *gin.Context, value string, maxAge int) {
	if h.Production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(middlewares.TokenCookie, value, maxAge, "/", "", h.Production, true)
}

// IssueToken signs a token for the posted identity and sets it as a cookie.
func (h *AuthController) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}
	token, err := h.Tokens.Issue(req.Email, req.Name)
	if err != nil {
		middlewares.Fail(c, apperror.Internal("could not issue token", err))
		return
	}
	h.setTokenCookie(c, token, int(h.CookieMaxAge.Seconds()))
	c.JSON(http.StatusOK, gin.H{"status": true})
}

func (h *AuthController) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": true})
}
