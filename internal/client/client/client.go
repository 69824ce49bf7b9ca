package client

import (
	"context"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
)

// PostalLookup resolves Brazilian postal addresses.
type PostalLookup interface {
	LookupCEP(ctx context.Context, cep string) (*models.PostalAddress, error)
	SearchByLocation(ctx context.Context, uf, city, street string) ([]models.PostalAddress, error)
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}
