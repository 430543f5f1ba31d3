package handler

import (
	"optibuy/internal/model"
	"optibuy/pkg/apperr"
	"optibuy/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentActor rebuilds the acting identity from the claims the auth
// middleware stamped onto the context.
func currentActor(c *gin.Context) model.Actor {
	actor := model.Actor{}
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				actor.ID = id
			}
		}
	}
	if v, ok := c.Get("userName"); ok {
		if s, ok := v.(string); ok {
			actor.Name = s
		}
	}
	if v, ok := c.Get("userRole"); ok {
		if s, ok := v.(string); ok {
			actor.Role = s
		}
	}
	return actor
}

// respondError maps a service error to its HTTP status via the failure kind.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, err.Error()))
}
