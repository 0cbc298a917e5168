// README: Driver roster handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medride/internal/modules/driver"
	"medride/internal/types"
)

type DriverHandler struct {
	drivers *driver.Service
}

func NewDriverHandler(svc *driver.Service) *DriverHandler {
	return &DriverHandler{drivers: svc}
}

type driverResponse struct {
	ID          types.ID      `json:"id"`
	Name        string        `json:"name"`
	PhoneNumber string        `json:"phone_number"`
	Status      driver.Status `json:"status"`
}

func (h *DriverHandler) List(c *gin.Context) {
	var (
		ds  []*driver.Driver
		err error
	)
	if c.Query("active") == "true" {
		ds, err = h.drivers.ListActive(c.Request.Context())
	} else {
		ds, err = h.drivers.List(c.Request.Context())
	}
	if err != nil {
		writeDriverError(c, err)
		return
	}
	out := make([]driverResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, driverResponse{
			ID:          d.ID,
			Name:        d.FullName(),
			PhoneNumber: d.PhoneNumber,
			Status:      d.Status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"drivers": out})
}

type driverStatusReq struct {
	Status string `json:"status"`
}

func (h *DriverHandler) SetStatus(c *gin.Context) {
	var req driverStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.drivers.SetStatus(c.Request.Context(), types.ID(c.Param("id")), driver.Status(req.Status))
	if err != nil {
		writeDriverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
