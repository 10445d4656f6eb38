package intents

import (
	"context"

	"go.uber.org/zap"

	"mycity/internal/finder"
	"mycity/internal/mycity"
)

const (
	SnowParkingURL = "https://services.arcgis.com/sFnw0xNflSi8J0uh/ArcGIS/rest/services/SnowParking/FeatureServer/0"

	SnowParkingAddressKey = "Address"

	SnowParkingSpeech = "The closest snow emergency parking, {{.Name}}, is at " +
		"{{.Address}}. It is {{.DrivingDistanceText}} away and should take " +
		"you {{.DrivingTimeText}} to drive there. {{.Fee}}"
)

func FormatSnowParkingRecord(fields map[string]string) {
	fields["Fee"] = Clause("Parking there costs %s.", fields["Fee"])
}

func SnowParkingFinderConfig(src finder.Source, locale Locale) finder.Config {
	return finder.Config{
		Source:       src,
		AddressKey:   SnowParkingAddressKey,
		Speech:       finder.MustSpeech("snow_parking", SnowParkingSpeech),
		Format:       FormatSnowParkingRecord,
		City:         locale.City,
		State:        locale.State,
		ErrorMessage: "Could not find closest snow emergency parking",
	}
}

type SnowParking struct {
	closestFeature
}

func NewSnowParking(f Finder, store AddressStore, locale Locale, log *zap.Logger) *SnowParking {
	if log == nil {
		log = zap.NewNop()
	}
	return &SnowParking{closestFeature{
		finder: f,
		store:  store,
		locale: locale,
		log:    log.Named("snow_parking"),
	}}
}

func (h *SnowParking) Handle(ctx context.Context, req *mycity.Request) (*mycity.Response, error) {
	return h.handle(ctx, req)
}
