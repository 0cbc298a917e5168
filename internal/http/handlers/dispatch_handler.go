// README: Dispatch optimizer handlers (optimize, apply, discard).
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"medride/internal/modules/assign"
)

type DispatchHandler struct {
	dispatch *assign.Service
}

func NewDispatchHandler(svc *assign.Service) *DispatchHandler {
	return &DispatchHandler{dispatch: svc}
}

type optimizeReq struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *DispatchHandler) Optimize(c *gin.Context) {
	var req optimizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	from, err := parseTimeParam(req.From)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid from")
		return
	}
	to, err := parseTimeParam(req.To)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid to")
		return
	}
	run, err := h.dispatch.Optimize(c.Request.Context(), from, to)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

type applyReq struct {
	RunID string `json:"run_id"`
}

// Apply writes a proposal run back. A partial apply is not an HTTP error:
// the dispatcher sees how many updates landed and which trip stopped the
// batch.
func (h *DispatchHandler) Apply(c *gin.Context) {
	var req applyReq
	if err := c.ShouldBindJSON(&req); err != nil || req.RunID == "" {
		writeError(c, http.StatusBadRequest, "missing run_id")
		return
	}
	res, err := h.dispatch.Apply(c.Request.Context(), req.RunID)
	if err != nil && len(res.Applied) == 0 && res.Total == 0 {
		writeDispatchError(c, err)
		return
	}
	body := gin.H{
		"summary": fmt.Sprintf("%d of %d assignments applied", len(res.Applied), res.Total),
		"result":  res,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (h *DispatchHandler) Discard(c *gin.Context) {
	var req applyReq
	if err := c.ShouldBindJSON(&req); err != nil || req.RunID == "" {
		writeError(c, http.StatusBadRequest, "missing run_id")
		return
	}
	if err := h.dispatch.Discard(c.Request.Context(), req.RunID); err != nil {
		writeDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}
