package pkg

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/colocmatching/internal/domain"
)

// ParseID parses the positive integer path parameter key.
func ParseID(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, domain.NewValidationError("invalid "+key, map[string]string{key: "must be a positive integer"})
	}
	return uint(id), nil
}

// ParamID parses the path parameter key, answering 400 when it is not a
// positive integer.
func ParamID(c *gin.Context, key string) (uint, bool) {
	id, err := ParseID(c, key)
	if err != nil {
		Error(c, err)
		return 0, false
	}
	return id, true
}
