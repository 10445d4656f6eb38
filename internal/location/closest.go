// Package location resolves the closest of a set of candidate features to a
// caller's address by driving distance.
package location

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mycity/internal/gmaps"
)

// Keys of the fields map returned by Closest.Fields.
const (
	DrivingDistanceTextKey = "DrivingDistanceText"
	DrivingTimeTextKey     = "DrivingTimeText"
)

var ErrNotFound = errors.New("location: no closest feature")

// NotFoundError explains why no closest feature was selected.
type NotFoundError struct {
	Reason error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no closest feature: %v", e.Reason)
}

func (e *NotFoundError) Unwrap() error { return e.Reason }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DrivingInfoSource answers one batched origin -> destinations query.
type DrivingInfoSource interface {
	DrivingInfo(ctx context.Context, origin string, destinations []string) ([]gmaps.DrivingInfo, error)
}

// Closest is the winning candidate.
type Closest struct {
	FeatureType  string
	Address      string
	Distance     int
	DistanceText string
	TimeText     string
}

// Fields renders the result as a mapping keyed by the feature type label
// plus the two fixed driving keys.
func (c *Closest) Fields() map[string]string {
	return map[string]string{
		c.FeatureType:          c.Address,
		DrivingDistanceTextKey: c.DistanceText,
		DrivingTimeTextKey:     c.TimeText,
	}
}

type Resolver struct {
	source DrivingInfoSource
	log    *zap.Logger
}

func NewResolver(source DrivingInfoSource, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{source: source, log: log}
}

// ClosestFeature sends every candidate's address (features[i][addressIndex])
// to the driving-info source in one call and returns the candidate with the
// smallest distance. Ties go to the earliest candidate. Addresses are used as
// given; callers enrich and deduplicate them.
//
// On failure errorMessage is logged and a *NotFoundError is returned.
func (r *Resolver) ClosestFeature(ctx context.Context, origin string, addressIndex int, featureType, errorMessage string, features [][]string) (*Closest, error) {
	closest, err := r.closest(ctx, origin, addressIndex, featureType, features)
	if err != nil {
		r.log.Error(errorMessage,
			zap.String("feature_type", featureType),
			zap.Int("candidates", len(features)),
			zap.Error(err))
		return nil, &NotFoundError{Reason: err}
	}
	return closest, nil
}

func (r *Resolver) closest(ctx context.Context, origin string, addressIndex int, featureType string, features [][]string) (*Closest, error) {
	if len(features) == 0 {
		return nil, errors.New("no candidate features")
	}

	dests := make([]string, len(features))
	for i, f := range features {
		if addressIndex < 0 || addressIndex >= len(f) {
			return nil, fmt.Errorf("feature %d has no field at index %d", i, addressIndex)
		}
		dests[i] = f[addressIndex]
	}

	infos, err := r.source.DrivingInfo(ctx, origin, dests)
	if err != nil {
		return nil, fmt.Errorf("driving info: %w", err)
	}
	if len(infos) != len(dests) {
		return nil, fmt.Errorf("driving info: got %d results for %d destinations", len(infos), len(dests))
	}

	best := -1
	for i, info := range infos {
		if !info.OK {
			continue
		}
		if best < 0 || info.Distance < infos[best].Distance {
			best = i
		}
	}
	if best < 0 {
		return nil, errors.New("no routable destination")
	}

	return &Closest{
		FeatureType:  featureType,
		Address:      dests[best],
		Distance:     infos[best].Distance,
		DistanceText: infos[best].DistanceText,
		TimeText:     infos[best].TimeText,
	}, nil
}
