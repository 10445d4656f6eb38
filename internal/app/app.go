// Package app wires configuration into a ready-to-serve router.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"mycity/internal/alexa"
	"mycity/internal/arcgis"
	"mycity/internal/config"
	"mycity/internal/fetch"
	"mycity/internal/finder"
	"mycity/internal/gmaps"
	"mycity/internal/intents"
	"mycity/internal/location"
	"mycity/internal/notify"
	"mycity/internal/security"
	"mycity/internal/store"
)

// LoadConfig loads the AWS SDK config and then the application config,
// which may read the API key from SSM.
func LoadConfig(ctx context.Context) (aws.Config, *config.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, nil, fmt.Errorf("load aws config: %w", err)
	}
	cfg, err := config.Load(ctx, ssm.NewFromConfig(awsCfg))
	if err != nil {
		return aws.Config{}, nil, err
	}
	return awsCfg, cfg, nil
}

// Deps are the external clients the router needs. Nil AWS clients disable
// the features that use them.
type Deps struct {
	DrivingInfo location.DrivingInfoSource
	DynamoDB    store.DDBClient
	SNS         notify.Publisher
	Fetch       *fetch.Options
}

// DepsFromAWS builds Deps from an AWS config, enabling the address store
// and alerts only when they are configured.
func DepsFromAWS(awsCfg aws.Config, cfg *config.Config) Deps {
	d := Deps{
		DrivingInfo: drivingInfoClient(cfg),
		Fetch:       fetchOptions(cfg),
	}
	if cfg.AddressTable != "" {
		d.DynamoDB = dynamodb.NewFromConfig(awsCfg)
	}
	if cfg.AlertsTopicARN != "" {
		d.SNS = sns.NewFromConfig(awsCfg)
	}
	return d
}

func drivingInfoClient(cfg *config.Config, opts ...gmaps.Option) *gmaps.Client {
	opts = append([]gmaps.Option{gmaps.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout})}, opts...)
	return gmaps.NewClient(cfg.GoogleMapsAPIKey, opts...)
}

func fetchOptions(cfg *config.Config) *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Timeout = cfg.HTTPTimeout
	return opts
}

// NewRouter registers every intent handler.
func NewRouter(cfg *config.Config, deps Deps, log *zap.Logger) (*alexa.Router, error) {
	if deps.Fetch == nil {
		deps.Fetch = fetchOptions(cfg)
	}
	if deps.DrivingInfo == nil {
		deps.DrivingInfo = drivingInfoClient(cfg)
	}
	locale := intents.Locale{City: cfg.City, State: cfg.State}

	var addresses intents.AddressStore
	if deps.DynamoDB != nil && cfg.AddressTable != "" {
		var sealer store.Sealer
		if cfg.AddressEncKeyB64 != "" {
			s, err := security.NewSealerFromBase64(cfg.AddressEncKeyB64)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", config.EnvAddressEncKey, err)
			}
			sealer = s
		}
		addresses = store.NewAddressStore(deps.DynamoDB, cfg.AddressTable, sealer)
	}

	opts := []finder.Option{finder.WithLogger(log.Named("finder"))}
	if deps.SNS != nil && cfg.AlertsTopicARN != "" {
		opts = append(opts, finder.WithReporter(notify.NewSNSReporter(deps.SNS, cfg.AlertsTopicARN, log)))
	}

	resolver := location.NewResolver(deps.DrivingInfo, log.Named("location"))

	polling := finder.New(intents.PollingFinderConfig(
		finder.CSVSource{URL: cfg.PollingLocationURL, Fetch: deps.Fetch}, locale), resolver, opts...)
	snow := finder.New(intents.SnowParkingFinderConfig(
		finder.FeatureServerSource{URL: cfg.SnowParkingURL, Client: arcgis.NewClient(deps.Fetch)}, locale), resolver, opts...)

	r := alexa.NewRouter(log)
	r.Handle(intents.PollingLocationIntent, intents.NewPollingLocation(polling, addresses, locale, log))
	r.Handle(intents.SnowParkingIntent, intents.NewSnowParking(snow, addresses, locale, log))
	r.Handle(intents.SetAddressIntent, intents.NewSetAddress(addresses, log))
	return r, nil
}
