package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/pkg/response"
)

// storeFailure answers a failed data store call. Store errors become 502 with
// the store's own message; request validation errors from the builder are
// the caller's fault and become 400.
func storeFailure(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, datastore.ErrInvalidColumn),
		errors.Is(err, datastore.ErrInvalidTable),
		errors.Is(err, datastore.ErrNoRecords):
		response.BadRequest(c, err.Error())
	default:
		response.BadGateway(c, datastore.Message(err, fallback))
	}
}
