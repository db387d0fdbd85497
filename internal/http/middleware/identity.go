// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller identity. The chat platform that fronts the
// API forwards the member id in X-User-ID and, optionally, the display name
// and @handle. Identity is not authentication: the API must sit behind the
// bot gateway, which is the only component trusted to set these headers.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity headers set by the bot gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
	HeaderUsername = "X-Username"
)

// Context keys for the resolved identity.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserName = "userName"
	ctxKeyUsername = "username"
)

// Identity copies the identity headers into the Gin context. Blank values
// are skipped so upstream middleware may pre-populate them.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		setIfPresent(c, ctxKeyUserID, c.GetHeader(HeaderUserID))
		setIfPresent(c, ctxKeyUserName, c.GetHeader(HeaderUserName))
		setIfPresent(c, ctxKeyUsername, c.GetHeader(HeaderUsername))
		c.Next()
	}
}

// UserID returns the caller id or "" when the request is anonymous.
func UserID(c *gin.Context) string { return ctxString(c, ctxKeyUserID) }

// UserName returns the display name forwarded by the gateway.
func UserName(c *gin.Context) string { return ctxString(c, ctxKeyUserName) }

// Username returns the platform handle forwarded by the gateway.
func Username(c *gin.Context) string { return ctxString(c, ctxKeyUsername) }

func setIfPresent(c *gin.Context, key, v string) {
	if v = strings.TrimSpace(v); v != "" {
		c.Set(key, v)
	}
}

func ctxString(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	v, _ := c.Get(key)
	return asString(v)
}
