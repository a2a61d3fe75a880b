package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/airticketing/config"
	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// TokenAuth resolves bearer tokens from the configured allowlist.
type TokenAuth struct {
	actors map[string]domain.Actor
}

func NewTokenAuth(tokens []config.TokenConfig) *TokenAuth {
	actors := make(map[string]domain.Actor, len(tokens))
	for _, t := range tokens {
		actors[t.Token] = domain.Actor{UserID: t.UserID, Admin: t.Admin}
	}
	return &TokenAuth{actors: actors}
}

func (a *TokenAuth) Lookup(token string) (domain.Actor, bool) {
	actor, ok := a.actors[token]
	return actor, ok
}

// Middleware rejects requests without a known "Authorization: Bearer" token
// and stores the resolved actor in the context.
func (a *TokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "missing bearer token"})
			return
		}
		actor, ok := a.Lookup(strings.TrimSpace(token))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "unknown token"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAdmin must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !actorFrom(c).Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "forbidden", Message: "administrator only"})
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}
	}
	actor, _ := v.(domain.Actor)
	return actor
}
