// README: Route previews for trips via the Google Maps Directions API.
package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

var ErrNotConfigured = errors.New("maps api key not configured")

// RoutePreview is what the console shows next to a trip: estimated driving
// duration and a human-readable distance between the stored addresses.
type RoutePreview struct {
	Duration time.Duration `json:"duration"`
	Distance string        `json:"distance"`
	Summary  string        `json:"summary"`
}

type RouteService struct {
	client *maps.Client
}

// NewRouteService builds the Directions client. An empty key returns a
// service whose calls fail with ErrNotConfigured instead of an error here,
// so deployments without a maps key still start.
func NewRouteService(apiKey string) (*RouteService, error) {
	if apiKey == "" {
		return &RouteService{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// Preview estimates the drive between a trip's pickup and destination
// addresses. Addresses go to the API as stored; nothing is geocoded or
// synthesized locally.
func (s *RouteService) Preview(ctx context.Context, origin, destination string) (*RoutePreview, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    "en",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, fmt.Errorf("no route found between %q and %q", origin, destination)
	}

	leg := routes[0].Legs[0]
	return &RoutePreview{
		Duration: leg.Duration,
		Distance: leg.Distance.HumanReadable,
		Summary:  routes[0].Summary,
	}, nil
}
