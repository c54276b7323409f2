// Command chatctl signs in to a chat server over gRPC and inspects the
// resulting session.
//
//	chatctl [-a addr] [-r seconds] [-c config.json] signin EMAIL PASSWORD
//	chatctl [-a addr] [-r seconds] [-c config.json] whoami TOKEN
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/chatserver/internal/client/client"
	"github.com/dmitrijs2005/chatserver/internal/client/config"
)

var errUsage = errors.New("usage: chatctl [-a addr] [-r seconds] [-c config.json] signin EMAIL PASSWORD | whoami TOKEN")

// identityClient is the part of client.GRPCClient chatctl needs.
type identityClient interface {
	Signin(ctx context.Context, email, password string) (string, error)
	WhoAmI(ctx context.Context) (*client.Identity, error)
	SetToken(token string)
	Token() string
}

func main() {
	cfg := config.LoadConfig()

	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := run(ctx, c, positional(os.Args[1:]), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, c identityClient, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "signin":
		if len(args) != 3 {
			return errUsage
		}
		id, err := c.Signin(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]string{"user_id": id, "token": c.Token()})
	case "whoami":
		if len(args) != 2 {
			return errUsage
		}
		c.SetToken(args[1])
		me, err := c.WhoAmI(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, me)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// positional drops the flags owned by the config package, and their values.
func positional(args []string) []string {
	owned := map[string]struct{}{"-c": {}, "-config": {}}
	for _, f := range config.Flags {
		owned[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, _, hasValue := strings.Cut(arg, "=")
		if _, ok := owned[name]; ok {
			if !hasValue && i+1 < len(args) {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}
