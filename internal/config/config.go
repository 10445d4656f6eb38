// Package config loads runtime configuration from the environment, an
// optional YAML file and SSM Parameter Store.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mycity/internal/intents"
)

const DefaultHTTPTimeout = 10 * time.Second

type Config struct {
	GoogleMapsAPIKey      string        `yaml:"google_maps_api_key"`
	GoogleMapsAPIKeyParam string        `yaml:"google_maps_api_key_param"`
	PollingLocationURL    string        `yaml:"polling_location_url" validate:"required,url"`
	SnowParkingURL        string        `yaml:"snow_parking_url" validate:"required,url"`
	City                  string        `yaml:"city" validate:"required"`
	State                 string        `yaml:"state" validate:"required"`
	AddressTable          string        `yaml:"address_table"`
	AddressEncKeyB64      string        `yaml:"address_enc_key_b64" validate:"omitempty,base64"`
	AlertsTopicARN        string        `yaml:"alerts_topic_arn" validate:"omitempty,startswith=arn:"`
	LogLevel              string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HTTPTimeout           time.Duration `yaml:"http_timeout" validate:"gt=0"`
}

func Defaults() Config {
	return Config{
		PollingLocationURL: intents.PollingLocationURL,
		SnowParkingURL:     intents.SnowParkingURL,
		City:               "Boston",
		State:              "MA",
		LogLevel:           "info",
		HTTPTimeout:        DefaultHTTPTimeout,
	}
}

// ParamGetter is the part of the SSM client used to resolve the API key.
type ParamGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Load builds the configuration: defaults, then the YAML file named by
// MYCITY_CONFIG_FILE, then environment variables. When the API key is not
// set directly and a parameter name is, it is read from SSM. ssmClient may
// be nil when no lookup is needed.
func Load(ctx context.Context, ssmClient ParamGetter) (*Config, error) {
	cfg := Defaults()
	if path := env(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.resolveAPIKey(ctx, ssmClient); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) resolveAPIKey(ctx context.Context, ssmClient ParamGetter) error {
	if c.GoogleMapsAPIKey != "" || c.GoogleMapsAPIKeyParam == "" {
		return nil
	}
	if ssmClient == nil {
		return fmt.Errorf("%s is set but no SSM client is available", EnvGoogleMapsAPIKeyParam)
	}
	out, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(c.GoogleMapsAPIKeyParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get parameter %s: %w", c.GoogleMapsAPIKeyParam, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return fmt.Errorf("parameter %s is empty", c.GoogleMapsAPIKeyParam)
	}
	c.GoogleMapsAPIKey = aws.ToString(out.Parameter.Value)
	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
