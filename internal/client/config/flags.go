package config

import (
	"flag"
	"os"

	"github.com/primesecret/authgate/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   server base URL (e.g., "http://localhost:8080")
//	-f string   path to the local session state file
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerURL, "s", config.ServerURL, "server base URL")
	fs.StringVar(&config.StatePath, "f", config.StatePath, "session state file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
