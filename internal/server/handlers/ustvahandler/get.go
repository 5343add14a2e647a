package ustvahandler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tdp/internal/repo/rprequest"
	"tdp/pkg/ginx"
)

// Get returns the current projection of one submission.
// GET /api/v2/ustva/:request_id
func (h *UstvaHandler) Get(c *gin.Context) {
	requestID := c.Param("request_id")
	if requestID == "" {
		ginx.BadRequest(c, "request_id required")
		return
	}

	status, err := h.service.GetUstva(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, rprequest.ErrRequestNotFound) {
			ginx.NotFound(c, "tax request not found")
			return
		}
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, status)
}
