package ustvahandler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tdp/internal/projector"
	"tdp/pkg/ginx"
)

// createRequest is the submission envelope posted by clients. The
// declaration payload stays raw; the service parses it.
type createRequest struct {
	CreatorID string          `json:"creator_id"`
	Payload   json.RawMessage `json:"payload" binding:"required"`
}

// createData is the response body for accepted submissions.
type createData struct {
	RequestID string              `json:"request_id"`
	Status    *projector.Response `json:"status"`
}

// Create accepts a new UStVA submission.
// POST /api/v2/ustva?wait=10
func (h *UstvaHandler) Create(c *gin.Context) {
	waitSeconds := 0
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil {
			waitSeconds = clampWait(w, h.maxWait)
		}
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	requestID, status, err := h.service.SendUstva(c.Request.Context(), req.CreatorID, req.Payload, waitSeconds)
	if err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	if status.ProcessStatus == projector.StateProcessing {
		pollURL := fmt.Sprintf("/api/v2/ustva/%s", requestID)
		ginx.Processing(c, requestID, pollURL)
		return
	}

	ginx.Created(c, createData{
		RequestID: requestID,
		Status:    status,
	})
}

// clampWait bounds a client-requested wait so a single request cannot
// pin the connection and its result subscription indefinitely.
func clampWait(waitSeconds int, maxWait time.Duration) int {
	if waitSeconds <= 0 {
		return 0
	}
	maxSeconds := int(maxWait.Seconds())
	if maxSeconds <= 0 {
		return 0
	}
	if waitSeconds > maxSeconds {
		return maxSeconds
	}
	return waitSeconds
}
