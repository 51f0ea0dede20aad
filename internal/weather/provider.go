package weather

import (
	"context"
	"time"
)

// Client abstracts the upstream weather API.
type Client interface {
	FetchWeather(ctx context.Context, endpoint Endpoint, placeID string, system MeasurementSystem) (*Response, error)
	SearchPlaces(ctx context.Context, text string) ([]Place, error)
}

// Store is the contract the in-memory history store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest(place Place, system MeasurementSystem) (Snapshot, error)
	GetRange(place Place, system MeasurementSystem, from, to time.Time) ([]Snapshot, error)
}
