package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/hadirku/presensi-api/internal/models"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
)

type reverseGeocoder interface {
	Resolve(ctx context.Context, lat, lon float64) (*string, error)
}

type requireLocationReader interface {
	RequireLocation(ctx context.Context) bool
}

// LocationService verifies device geolocation reports before they reach the
// ledger. Reverse geocoding is best effort; a failed lookup never rejects a
// submission, it just leaves the address empty.
type LocationService struct {
	geocoder reverseGeocoder
	settings requireLocationReader
	logger   *zap.Logger
}

// NewLocationService constructs a LocationService.
func NewLocationService(geocoder reverseGeocoder, settings requireLocationReader, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationService{geocoder: geocoder, settings: settings, logger: logger}
}

// Verify resolves a report into ledger-ready coordinates. When mandatory is
// false the global require_location setting decides whether verification
// runs; QR intake passes mandatory because its location is never optional.
func (s *LocationService) Verify(ctx context.Context, report *models.LocationReport, mandatory bool) (*models.VerifiedLocation, error) {
	required := mandatory || s.settings.RequireLocation(ctx)

	if !required {
		if report == nil || report.Sample == nil {
			return nil, nil
		}
		return s.resolve(ctx, *report.Sample), nil
	}

	if report == nil {
		return nil, appErrors.Clone(appErrors.ErrLocationUnavailable, "location report is required")
	}

	if report.FailureCode != nil {
		switch *report.FailureCode {
		case models.LocationFailureDenied:
			return nil, appErrors.ErrLocationDenied
		case models.LocationFailureTimeout:
			return nil, appErrors.ErrLocationTimeout
		default:
			return nil, appErrors.ErrLocationUnavailable
		}
	}

	if report.Sample == nil {
		return nil, appErrors.Clone(appErrors.ErrLocationUnavailable, "location report carries no fix")
	}

	// A perfect zero accuracy does not occur with real GPS hardware; mock
	// location providers report it routinely.
	if report.Sample.Accuracy == 0 {
		return nil, appErrors.ErrSuspectedMockLocation
	}

	return s.resolve(ctx, *report.Sample), nil
}

func (s *LocationService) resolve(ctx context.Context, sample models.LocationSample) *models.VerifiedLocation {
	verified := &models.VerifiedLocation{
		Latitude:  &sample.Latitude,
		Longitude: &sample.Longitude,
	}
	address, err := s.geocoder.Resolve(ctx, sample.Latitude, sample.Longitude)
	if err != nil {
		s.logger.Warn("reverse geocoding failed", zap.Error(err))
		return verified
	}
	verified.Address = address
	return verified
}
