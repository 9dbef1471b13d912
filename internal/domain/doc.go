// Package domain turns location-bearing events into magnetic declination
// records.
//
// # Input
//
// Events arrive as JSON on the source topic. The enriched storm events
// published by the ETL service are accepted as-is; any other producer only
// needs to supply the fields below:
//
//	{
//	  "id": "hail-3f2a...",
//	  "geo": {"lat": 31.02, "lon": -98.44},
//	  "altitude_km": 0.4,                       optional
//	  "event_time": "2024-04-26T15:10:00Z",     or "begin_time"
//	  "location": {"name": "Chappel", "state": "TX"}
//	}
//
// A latitude/longitude pair of exactly (0, 0) is treated as missing, matching
// the upstream convention. Events without coordinates are forward geocoded
// from location name and state when a [Geocoder] is configured.
//
// # Target date
//
// The model is evaluated at a decimal year chosen in this order: the fixed
// date from configuration, the event time, the current time from the package
// clock (see [SetClock]).
//
// # Output
//
// A [DeclinationEvent] carries the full field report plus the correction to
// add to a compass bearing. Elements the model cannot resolve, such as the
// declination at a geographic pole, serialize as JSON null.
//
// # ID Generation
//
// Events without an id and without a message key get a deterministic SHA-256
// based ID derived from coordinates, time and place name. See [generateID].
package domain
