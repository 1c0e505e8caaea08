package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tokenkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON configuration file.
// Durations accept "90s"-style strings or integer nanoseconds. Fields left
// out of the file keep their current values.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DBMaxConns                  int32          `json:"db_max_conns"`
	DBMinConns                  int32          `json:"db_min_conns"`
	DBConnMaxLifetime           timex.Duration `json:"db_conn_max_lifetime"`
	StoreTimeout                timex.Duration `json:"store_timeout"`
	RevocationPurgeInterval     timex.Duration `json:"revocation_purge_interval"`
	MFAQRSize                   int            `json:"mfa_qr_size"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays values from the JSON file at path onto config.
// An empty path means no file was requested.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.DBConnMaxLifetime.Duration != 0 {
		config.DBConnMaxLifetime = c.DBConnMaxLifetime.Duration
	}
	if c.StoreTimeout.Duration != 0 {
		config.StoreTimeout = c.StoreTimeout.Duration
	}
	if c.RevocationPurgeInterval.Duration != 0 {
		config.RevocationPurgeInterval = c.RevocationPurgeInterval.Duration
	}
	if c.DBMaxConns != 0 {
		config.DBMaxConns = c.DBMaxConns
	}
	if c.DBMinConns != 0 {
		config.DBMinConns = c.DBMinConns
	}
	if c.MFAQRSize != 0 {
		config.MFAQRSize = c.MFAQRSize
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
