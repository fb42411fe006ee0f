package services

import (
	"github.com/foodcart/core/internal/domain/entities"
)

// CatalogService exposes the static item catalog
type CatalogService struct {
	catalog entities.Catalog
}

// NewCatalogService creates a catalog service over a fixed item set
func NewCatalogService(catalog entities.Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// List returns a copy of the full catalog
func (s *CatalogService) List() entities.Catalog {
	out := make(entities.Catalog, len(s.catalog))
	for name, item := range s.catalog {
		out[name] = item
	}
	return out
}

// Total prices a cart; items missing from the catalog are reported back
func (s *CatalogService) Total(cart entities.Cart) (float64, []string) {
	return s.catalog.Total(cart)
}
