package models

// LocationSample is a device-captured geolocation fix shipped with a
// submission. Accuracy of exactly zero is treated as a spoofing signal.
type LocationSample struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// LocationFailure is the device-reported capture failure code forwarded by
// clients whose location capture did not produce a fix.
type LocationFailure string

const (
	LocationFailureDenied      LocationFailure = "denied"
	LocationFailureUnavailable LocationFailure = "unavailable"
	LocationFailureTimeout     LocationFailure = "timeout"
)
