package handlers

import (
	"strings"

	"presupuesto_xpto/internal/domain/entities"

	"github.com/gin-gonic/gin"
)

// Identity headers set by the gateway in front of the service. Tokens are
// validated there.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	actorContextKey = "actor"
)

// ActorMiddleware stores the caller identity in the gin context. A missing
// role header means viewer.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(actorContextKey, entities.Actor{
			ID:   strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Role: entities.ParseRole(c.GetHeader(HeaderUserRole)),
		})
		c.Next()
	}
}

// actorFrom falls back to reading the headers when the middleware did not
// run, which keeps handlers usable on bare test routers.
func actorFrom(c *gin.Context) entities.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if a, ok := v.(entities.Actor); ok {
			return a
		}
	}
	return entities.Actor{
		ID:   strings.TrimSpace(c.GetHeader(HeaderUserID)),
		Role: entities.ParseRole(c.GetHeader(HeaderUserRole)),
	}
}
