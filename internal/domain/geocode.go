package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding fills in coordinates for an observation that has none.
// If geocoder is nil or geocoding fails, the observation is returned with
// GeoSource set accordingly and its coordinates untouched.
func EnrichWithGeocoding(ctx context.Context, obs Observation, geocoder Geocoder, logger *slog.Logger) Observation {
	if !obs.Geo.IsZero() {
		obs.GeoSource = "original"
		return obs
	}
	if geocoder == nil || obs.Location.Name == "" {
		return obs
	}

	result, err := geocoder.ForwardGeocode(ctx, obs.Location.Name, obs.Location.State)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"event_id", obs.ID,
			"location", obs.Location.Name,
			"state", obs.Location.State,
			"error", err,
		)
		obs.GeoSource = "failed"
		return obs
	}
	if result.Lat == 0 && result.Lon == 0 {
		obs.GeoSource = "failed"
		return obs
	}

	obs.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
	obs.FormattedAddress = result.FormattedAddress
	obs.PlaceName = result.PlaceName
	obs.GeoConfidence = result.Confidence
	obs.GeoSource = "forward"
	return obs
}
