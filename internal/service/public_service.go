package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// PublicService serves the unauthenticated surface: landing-page
// counters, announcements and the pricing shown on the creation screen.
type PublicService struct {
	api *upstream.Client
	log zerolog.Logger
}

// NewPublicService creates a new PublicService.
func NewPublicService(api *upstream.Client, log zerolog.Logger) *PublicService {
	return &PublicService{
		api: api,
		log: log.With().Str("component", "public_service").Logger(),
	}
}

// Stats returns the landing-page counters.
func (s *PublicService) Stats(ctx context.Context) (json.RawMessage, error) {
	return s.api.GetPublicStats(ctx)
}

// Announcements returns the public announcement feed.
func (s *PublicService) Announcements(ctx context.Context) ([]model.Announcement, error) {
	items, err := s.api.ListAnnouncements(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Announcement{}
	}
	return items, nil
}

// Prices extracts the pricing pair from the settings document. Missing
// values fall back to the platform defaults.
func (s *PublicService) Prices(ctx context.Context) (*model.PublicSettings, error) {
	doc, err := s.api.GetSettings(ctx, 0)
	if err != nil {
		return nil, err
	}

	prices := &model.PublicSettings{PricePerQuestion: 100, PricePerTest: 1000}
	var parsed model.PublicSettings
	if err := json.Unmarshal(doc, &parsed); err == nil {
		if parsed.PricePerQuestion > 0 {
			prices.PricePerQuestion = parsed.PricePerQuestion
		}
		if parsed.PricePerTest > 0 {
			prices.PricePerTest = parsed.PricePerTest
		}
	}
	return prices, nil
}
