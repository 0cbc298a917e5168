// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medride/internal/http/handlers"
	"medride/internal/http/middleware"
	"medride/internal/infra"
	"medride/internal/maps"
	"medride/internal/modules/assign"
	"medride/internal/modules/billing"
	"medride/internal/modules/driver"
	"medride/internal/modules/trip"
)

type ServerDeps struct {
	Trips    *trip.Service
	Drivers  *driver.Service
	Dispatch *assign.Service
	Billing  *billing.Service
	Routes   *maps.RouteService
	Verifier infra.TokenVerifier
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps}
}

// Routes builds the gin engine. Everything under /api requires a verified
// bearer token; the dispatcher and driver groups additionally gate on the
// role claim.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	tripH := handlers.NewTripHandler(s.deps.Trips, s.deps.Routes)
	driverH := handlers.NewDriverHandler(s.deps.Drivers)
	dispatchH := handlers.NewDispatchHandler(s.deps.Dispatch)
	billingH := handlers.NewBillingHandler(s.deps.Billing)

	api := r.Group("/api", middleware.Auth(s.deps.Verifier))

	dispatcher := api.Group("", middleware.RequireRole("dispatcher"))
	dispatcher.GET("/trips", tripH.List)
	dispatcher.GET("/trips/:id", tripH.Get)
	dispatcher.GET("/trips/:id/route", tripH.Route)
	dispatcher.POST("/trips/:id/approve", tripH.Approve)
	dispatcher.POST("/trips/:id/reject", tripH.Reject)
	dispatcher.POST("/trips/:id/assign", tripH.Assign)
	dispatcher.POST("/trips/:id/complete", tripH.Complete)
	dispatcher.GET("/drivers", driverH.List)
	dispatcher.POST("/drivers/:id/status", driverH.SetStatus)
	dispatcher.POST("/dispatch/optimize", dispatchH.Optimize)
	dispatcher.POST("/dispatch/apply", dispatchH.Apply)
	dispatcher.POST("/dispatch/discard", dispatchH.Discard)
	dispatcher.GET("/billing/facilities/:id/statement", billingH.FacilityStatement)
	dispatcher.POST("/billing/trips/:id/verify", billingH.VerifyCheck)
	dispatcher.POST("/billing/trips/:id/flag", billingH.Flag)

	drivers := api.Group("", middleware.RequireRole("driver"))
	drivers.POST("/trips/:id/accept", tripH.Accept)
	drivers.POST("/trips/:id/decline", tripH.Decline)

	return r
}
