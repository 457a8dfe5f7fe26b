package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Ronak-Sheladiya/pixel-vault/internal/flagx"
)

// Duration wraps time.Duration so JSON config files can carry either a
// duration string ("15m") or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", data)
	}
}

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
// Zero values mean "keep the current (default) value".
type JsonConfig struct {
	EndpointAddr                 string   `json:"endpoint_addr"`
	DatabaseDSN                  string   `json:"database_dsn"`
	SecretKey                    string   `json:"secret_key"`
	AccessTokenValidityDuration  Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration Duration `json:"refresh_token_validity_duration"`
	S3AccessKey                  string   `json:"s3_access_key"`
	S3SecretKey                  string   `json:"s3_secret_key"`
	S3Bucket                     string   `json:"s3_bucket"`
	S3Region                     string   `json:"s3_region"`
	S3BaseEndpoint               string   `json:"s3_base_endpoint"`
	GlobalStorageLimit           int64    `json:"global_storage_limit"`
	UserStorageLimit             int64    `json:"user_storage_limit"`
	FrontendURL                  string   `json:"frontend_url"`
}

// parseJson overlays values from the JSON file named by the -c/-config flag,
// when present. Missing flag means nothing to load; an unreadable or invalid
// file is an error.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("config file read error: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config file parse error: %w", err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.GlobalStorageLimit != 0 {
		config.GlobalStorageLimit = c.GlobalStorageLimit
	}
	if c.UserStorageLimit != 0 {
		config.UserStorageLimit = c.UserStorageLimit
	}
	if c.FrontendURL != "" {
		config.FrontendURL = c.FrontendURL
	}

	return nil
}
