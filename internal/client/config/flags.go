package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Arguments it does not know about are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the HTTP API")
	fs.StringVar(&cfg.SessionDB, "db", cfg.SessionDB, "local session database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-db", "-t"}))
}
