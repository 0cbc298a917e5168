// README: Shared handler utilities (error mapping to HTTP statuses).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medride/internal/modules/assign"
	"medride/internal/modules/billing"
	"medride/internal/modules/driver"
	"medride/internal/modules/trip"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeTripError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrInvalidState), errors.Is(err, trip.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, trip.ErrUpstream):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeDriverError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, driver.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, driver.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assign.ErrBadRange),
		errors.Is(err, assign.ErrNoTrips),
		errors.Is(err, assign.ErrNoDrivers):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, assign.ErrRunNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrInvalidState), errors.Is(err, trip.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, billing.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrInvalidState), errors.Is(err, billing.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
