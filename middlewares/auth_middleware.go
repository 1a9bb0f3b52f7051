package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"
	"github.com/aliasrafbd/hostel-management-server/utils"

	"github.com/gin-gonic/gin"
)

const (
	// IdentityKey holds the verified email in the gin context.
	IdentityKey = "email"
	TokenCookie = "token"
)

type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authorizer enforces the route policies. It is built once with the token
// verifier and user store and shared by every route.
type Authorizer struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewAuthorizer(tokens TokenVerifier, users UserLookup) *Authorizer {
	return &Authorizer{tokens: tokens, users: users}
}

// IdentityEmail returns the verified email, empty on public routes.
func IdentityEmail(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

// Authenticate verifies the token cookie and stores the identity.
func (a *Authorizer) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			Fail(c, apperror.Unauthenticated("unauthorized access"))
			return
		}
		claims, err := a.tokens.Verify(token)
		if err != nil {
			Fail(c, &apperror.Error{Kind: apperror.KindInvalidToken, Message: "forbidden access", Err: err})
			return
		}
		c.Set(IdentityKey, claims.Email)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func (a *Authorizer) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := a.users.FindByEmail(c.Request.Context(), IdentityEmail(c))
		if apperror.IsKind(err, apperror.KindNotFound) || (err == nil && !u.IsAdmin()) {
			Fail(c, apperror.Forbidden("forbidden access"))
			return
		}
		if err != nil {
			Fail(c, err)
			return
		}
		c.Next()
	}
}

// Location says where a route carries the email it acts on.
type Location int

const (
	FromParam Location = iota + 1
	FromQuery
	FromBody
)

// SelfSource names the claimed email of a self-only route.
type SelfSource struct {
	From Location
	Key  string
}

// RequireSelf rejects requests whose claimed email differs from the
// identity. An empty claim passes; handlers then act on the identity.
func (a *Authorizer) RequireSelf(src SelfSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed := claimedEmail(c, src)
		if claimed != "" && claimed != IdentityEmail(c) {
			Fail(c, apperror.Forbidden("forbidden access"))
			return
		}
		c.Next()
	}
}

func claimedEmail(c *gin.Context, src SelfSource) string {
	switch src.From {
	case FromParam:
		return c.Param(src.Key)
	case FromQuery:
		return c.Query(src.Key)
	case FromBody:
		if c.Request.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil || len(raw) == 0 {
			return ""
		}
		var body map[string]any
		if json.Unmarshal(raw, &body) != nil {
			return ""
		}
		s, _ := body[src.Key].(string)
		return s
	}
	return ""
}
