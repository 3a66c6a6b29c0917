package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bioguard/internal/flagx"
)

// ValueFlags lists the flags that take a value, so the CLI can tell them
// apart from its subcommand arguments.
var ValueFlags = []string{"-a", "-t", "-c", "-config"}

// parseFlags populates Config fields from -a and -t. Other arguments are
// filtered out with flagx.FilterArgs so subcommands do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "BioGuard server URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
