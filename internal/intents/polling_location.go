package intents

import (
	"context"

	"go.uber.org/zap"

	"mycity/internal/finder"
	"mycity/internal/mycity"
)

const (
	PollingLocationURL = "http://bostonopendata-boston.opendata.arcgis.com/datasets/" +
		"053b0359485d435abfb525e07e298885_0.csv"

	PollingAddressKey = "Location3"

	PollingSpeech = "The closest polling location, {{.Location2}}, is at " +
		"{{.Location3}}. It is {{.DrivingDistanceText}} away and should take " +
		"you {{.DrivingTimeText}} to drive there. {{.WardsPrec}}"
)

// FormatPollingRecord turns the ward/precinct into a sentence, or drops it
// when blank.
func FormatPollingRecord(fields map[string]string) {
	fields["WardsPrec"] = Clause("This location belongs to %s.", fields["WardsPrec"])
}

// PollingFinderConfig describes the polling-location dataset.
func PollingFinderConfig(src finder.Source, locale Locale) finder.Config {
	return finder.Config{
		Source:       src,
		AddressKey:   PollingAddressKey,
		Speech:       finder.MustSpeech("polling_location", PollingSpeech),
		Format:       FormatPollingRecord,
		City:         locale.City,
		State:        locale.State,
		ErrorMessage: "Could not find closest polling location",
	}
}

type PollingLocation struct {
	closestFeature
}

func NewPollingLocation(f Finder, store AddressStore, locale Locale, log *zap.Logger) *PollingLocation {
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingLocation{closestFeature{
		finder: f,
		store:  store,
		locale: locale,
		log:    log.Named("polling_location"),
	}}
}

func (h *PollingLocation) Handle(ctx context.Context, req *mycity.Request) (*mycity.Response, error) {
	return h.handle(ctx, req)
}
