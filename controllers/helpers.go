package controllers

import (
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/middlewares"

	"github.com/gin-gonic/gin"
)

// idParam parses the :id path segment.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		middlewares.Fail(c, apperror.Validation("invalid id"))
		return 0, false
	}
	return uint(id), true
}

// queryInt falls back to def when the value is missing, malformed or below min.
func queryInt(c *gin.Context, key string, def, min int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < min {
		return def
	}
	return v
}

func queryFloat(c *gin.Context, key string, def float64) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || math.IsNaN(v) {
		return def
	}
	return v
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middlewares.Fail(c, apperror.FromBinding(err))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body, leaving dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		middlewares.Fail(c, apperror.FromBinding(err))
		return false
	}
	return true
}

// orIdentity returns email, or the caller's identity when email is empty.
func orIdentity(c *gin.Context, email string) string {
	if email == "" {
		return middlewares.IdentityEmail(c)
	}
	return email
}
