package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables.
const (
	EnvGoogleMapsAPIKey      = "GOOGLE_MAPS_API_KEY"
	EnvGoogleMapsAPIKeyParam = "GOOGLE_MAPS_API_KEY_PARAM"
	EnvPollingLocationURL    = "POLLING_LOCATION_URL"
	EnvSnowParkingURL        = "SNOW_PARKING_URL"
	EnvCity                  = "MYCITY_CITY"
	EnvState                 = "MYCITY_STATE"
	EnvAddressTable          = "ADDRESS_TABLE"
	EnvAddressEncKey         = "ADDRESS_ENC_KEY_B64"
	EnvAlertsTopicARN        = "ALERTS_TOPIC_ARN"
	EnvLogLevel              = "LOG_LEVEL"
	EnvHTTPTimeoutSeconds    = "HTTP_TIMEOUT_SECONDS"
	EnvConfigFile            = "MYCITY_CONFIG_FILE"
)

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// httpTimeout falls back to def when unset or not a positive integer.
func httpTimeout(def time.Duration) time.Duration {
	v := env(EnvHTTPTimeoutSeconds)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// applyEnv overwrites c with every variable that is set.
func (c *Config) applyEnv() {
	set := func(dst *string, name string) {
		if v := env(name); v != "" {
			*dst = v
		}
	}
	set(&c.GoogleMapsAPIKey, EnvGoogleMapsAPIKey)
	set(&c.GoogleMapsAPIKeyParam, EnvGoogleMapsAPIKeyParam)
	set(&c.PollingLocationURL, EnvPollingLocationURL)
	set(&c.SnowParkingURL, EnvSnowParkingURL)
	set(&c.City, EnvCity)
	set(&c.State, EnvState)
	set(&c.AddressTable, EnvAddressTable)
	set(&c.AddressEncKeyB64, EnvAddressEncKey)
	set(&c.AlertsTopicARN, EnvAlertsTopicARN)
	set(&c.LogLevel, EnvLogLevel)
	c.HTTPTimeout = httpTimeout(c.HTTPTimeout)
}
