// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medride/internal/config"
	httptransport "medride/internal/http"
	"medride/internal/infra"
	"medride/internal/maps"
	"medride/internal/modules/assign"
	"medride/internal/modules/billing"
	"medride/internal/modules/driver"
	"medride/internal/modules/trip"
	"medride/internal/payments"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("MEDRIDE_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}

	charger := payments.NewClient(cfg.Payments.BaseURL)

	tripStore := trip.NewStore(dbPool)
	tripSvc := trip.NewService(tripStore, charger)

	driverStore := driver.NewStore(dbPool)
	driverSvc := driver.NewService(driverStore)

	proposalTTL := time.Duration(cfg.Dispatch.ProposalTTLMinutes) * time.Minute
	dispatchStore := assign.NewStore(redisClient, proposalTTL)
	dispatchSvc := assign.NewService(tripSvc, driverSvc, tripSvc, dispatchStore, cfg.Dispatch)

	billingStore := billing.NewStore(dbPool)
	billingSvc := billing.NewService(billingStore)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Trips:    tripSvc,
		Drivers:  driverSvc,
		Dispatch: dispatchSvc,
		Billing:  billingSvc,
		Routes:   routeSvc,
		Verifier: verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
