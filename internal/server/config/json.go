package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
	"github.com/dmitrijs2005/profilekeeper/internal/timex"
)

// JsonConfig mirrors Config for decoding. Durations accept "15m" or integer
// nanoseconds. Keys absent from the file leave the current values untouched.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	StorageBackend       string         `json:"storage_backend"`
	DatabaseDSN          string         `json:"database_dsn"`
	MongoURI             string         `json:"mongo_uri"`
	MongoDatabase        string         `json:"mongo_database"`
	AccessTokenSecret    string         `json:"access_token_secret"`
	RefreshTokenSecret   string         `json:"refresh_token_secret"`
	AccessTokenLifetime  timex.Duration `json:"access_token_lifetime"`
	RefreshTokenLifetime timex.Duration `json:"refresh_token_lifetime"`
	CookieSecure         bool           `json:"cookie_secure"`
	CookieSameSite       string         `json:"cookie_samesite"`
	CookieDomain         string         `json:"cookie_domain"`
	UploadTempDir        string         `json:"upload_temp_dir"`
	MaxUploadSize        int64          `json:"max_upload_size"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	S3PublicBaseURL      string         `json:"s3_public_base_url"`
	LogLevel             string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:     c.EndpointAddrHTTP,
		EndpointAddrGRPC:     c.EndpointAddrGRPC,
		StorageBackend:       c.StorageBackend,
		DatabaseDSN:          c.DatabaseDSN,
		MongoURI:             c.MongoURI,
		MongoDatabase:        c.MongoDatabase,
		AccessTokenSecret:    c.AccessTokenSecret,
		RefreshTokenSecret:   c.RefreshTokenSecret,
		AccessTokenLifetime:  timex.Duration{Duration: c.AccessTokenLifetime},
		RefreshTokenLifetime: timex.Duration{Duration: c.RefreshTokenLifetime},
		CookieSecure:         c.CookieSecure,
		CookieSameSite:       c.CookieSameSite,
		CookieDomain:         c.CookieDomain,
		UploadTempDir:        c.UploadTempDir,
		MaxUploadSize:        c.MaxUploadSize,
		S3RootUser:           c.S3RootUser,
		S3RootPassword:       c.S3RootPassword,
		S3Bucket:             c.S3Bucket,
		S3Region:             c.S3Region,
		S3BaseEndpoint:       c.S3BaseEndpoint,
		S3PublicBaseURL:      c.S3PublicBaseURL,
		LogLevel:             c.LogLevel,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.StorageBackend = j.StorageBackend
	c.DatabaseDSN = j.DatabaseDSN
	c.MongoURI = j.MongoURI
	c.MongoDatabase = j.MongoDatabase
	c.AccessTokenSecret = j.AccessTokenSecret
	c.RefreshTokenSecret = j.RefreshTokenSecret
	c.AccessTokenLifetime = j.AccessTokenLifetime.Duration
	c.RefreshTokenLifetime = j.RefreshTokenLifetime.Duration
	c.CookieSecure = j.CookieSecure
	c.CookieSameSite = j.CookieSameSite
	c.CookieDomain = j.CookieDomain
	c.UploadTempDir = j.UploadTempDir
	c.MaxUploadSize = j.MaxUploadSize
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.S3PublicBaseURL = j.S3PublicBaseURL
	c.LogLevel = j.LogLevel
}

// parseJson overlays the JSON file named by -c / -config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	j := toJson(config)
	if err := json.Unmarshal(data, j); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	j.apply(config)

	return nil
}
