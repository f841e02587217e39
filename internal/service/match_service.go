package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/geo"
	"github.com/spec-kit/roadside-assist/internal/repository"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// MatchService selects and ranks candidates around a breakdown location.
type MatchService struct {
	mechanics repository.MechanicStore
	providers repository.ProviderStore
}

// NewMatchService constructs the service.
func NewMatchService(mechanics repository.MechanicStore, providers repository.ProviderStore) *MatchService {
	return &MatchService{mechanics: mechanics, providers: providers}
}

// NearestMechanics returns up to limit eligible mechanics ranked ascending
// by the squared-coordinate proxy metric. The proxy, not true geodesic
// distance, is the ranking key: clients depend on this exact ordering.
func (s *MatchService) NearestMechanics(ctx context.Context, lat, lng float64, limit int) ([]domain.MechanicProfile, error) {
	candidates, err := s.mechanics.ListEligible(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := geo.SquaredDelta(lat, lng, *candidates[i].CurrentLatitude, *candidates[i].CurrentLongitude)
		dj := geo.SquaredDelta(lat, lng, *candidates[j].CurrentLatitude, *candidates[j].CurrentLongitude)
		return di < dj
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// NearbyProviders returns open, verified parts providers within radiusKm of
// the location. The filter uses true Haversine distance; the ordering uses
// the same proxy metric as mechanic ranking.
func (s *MatchService) NearbyProviders(ctx context.Context, lat, lng, radiusKm float64) ([]domain.PartsProvider, error) {
	candidates, err := s.providers.ListOpenVerified(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var nearby []domain.PartsProvider
	for _, provider := range candidates {
		if geo.Distance(lat, lng, provider.Latitude, provider.Longitude) <= radiusKm {
			nearby = append(nearby, provider)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		di := geo.SquaredDelta(lat, lng, nearby[i].Latitude, nearby[i].Longitude)
		dj := geo.SquaredDelta(lat, lng, nearby[j].Latitude, nearby[j].Longitude)
		return di < dj
	})
	return nearby, nil
}

// EstimateArrival computes the arrival timestamp for a mechanic traveling
// to the given location, or nil when the mechanic has no known position.
func (s *MatchService) EstimateArrival(profile *domain.MechanicProfile, lat, lng float64, now time.Time) *time.Time {
	if profile == nil || !profile.HasLocation() {
		return nil
	}
	distanceKm := geo.Distance(*profile.CurrentLatitude, *profile.CurrentLongitude, lat, lng)
	eta := now.Add(time.Duration(geo.ETAMinutes(distanceKm)) * time.Minute)
	return &eta
}
