package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

var flagNames = []string{"-a", "-g", "-b", "-d", "-m", "-s", "-r", "-t", "-x", "-l", "-u", "-e", "-bucket", "-secure-cookies"}

// parseFlags applies command-line flags:
//
//	-a string    HTTP bind address
//	-g string    gRPC (health) bind address
//	-b string    storage backend: postgres | mongo
//	-d string    PostgreSQL DSN
//	-m string    MongoDB URI
//	-s string    access token secret
//	-r string    refresh token secret
//	-t duration  access token lifetime
//	-x duration  refresh token lifetime
//	-l string    log level
//	-u string    upload temp dir
//	-e string    S3 base endpoint
//	-bucket      S3 bucket
//	-secure-cookies  mark auth cookies Secure (use -secure-cookies=false to disable)
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP bind address")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC bind address")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (postgres|mongo)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "r", config.RefreshTokenSecret, "refresh token secret")
	fs.DurationVar(&config.AccessTokenLifetime, "t", config.AccessTokenLifetime, "access token lifetime")
	fs.DurationVar(&config.RefreshTokenLifetime, "x", config.RefreshTokenLifetime, "refresh token lifetime")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.UploadTempDir, "u", config.UploadTempDir, "upload temp dir")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Bucket, "bucket", config.S3Bucket, "S3 bucket")
	fs.BoolVar(&config.CookieSecure, "secure-cookies", config.CookieSecure, "mark auth cookies Secure")

	return fs.Parse(flagx.FilterArgs(args, flagNames))
}
