package bizerror

import (
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// MustParseIDParam reads an id path parameter, panicking with ErrBadParam on malformed input.
func MustParseIDParam(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&ErrBadParam{Cause: errors.New("invalid id '" + c.Param(name) + "'")})
	}
	return id
}
