package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/clinic-crm/pkg/errors"
)

// ParseID reads the numeric :id path parameter.
func ParseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid id", err)
	}
	return id, nil
}

// BindJSON decodes the request body into obj. Field validation is left to
// the services.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperrors.Validation("invalid request body", err)
	}
	return nil
}
