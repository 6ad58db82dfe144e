// Command admin talks to the license server's admin API.
//
// Usage:
//
//	admin [-a addr] [-s secret] [-o operator] list|quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/mls/internal/server/auth"
	gs "github.com/dmitrijs2005/mls/internal/server/grpc"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
)

func main() {
	addr := flag.String("a", "127.0.0.1:50051", "admin gRPC address")
	secret := flag.String("s", os.Getenv("MLS_SECRET_KEY"), "secret key shared with the server")
	operator := flag.String("o", "admin", "operator name recorded in the token")
	flag.Parse()

	if flag.NArg() != 1 || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: admin [-a addr] -s secret list|quit")
		os.Exit(2)
	}

	if err := run(context.Background(), *addr, *secret, *operator, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, secret, operator, cmd string) error {
	token, err := auth.GenerateToken(operator, []byte(secret), time.Minute)
	if err != nil {
		return err
	}

	c, err := gs.NewAdminClient(addr, token)
	if err != nil {
		return err
	}
	defer c.Close()

	switch cmd {
	case "list", "print":
		leases, err := c.ListLeases(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Active Licenses:")
		for _, l := range leases {
			fmt.Printf("License User Name: %s\n", l.UserID)
			fmt.Printf("Expiration Time: %s\n\n", l.ExpiresAt.Format(protocol.TimeLayout))
		}
		return nil

	case "quit":
		return c.Shutdown(ctx)

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
