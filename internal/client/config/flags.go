package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/flagx"
)

// Flags lists the options parseFlags owns. Positional arguments and other
// flags are left for the caller.
var Flags = []string{"-a", "-r"}

func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], Flags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the chat server gRPC endpoint")
	timeout := fs.Int("r", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
