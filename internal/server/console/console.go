// Package console implements the operator command loop read from stdin.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/dmitrijs2005/mls/internal/server/leases"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
	"golang.org/x/term"
)

const prompt = "Enter command (quit/print): "

// LeaseLister is the read side of the lease table.
type LeaseLister interface {
	Snapshot() []leases.Lease
}

type Console struct {
	leases     LeaseLister
	quit       func()
	in         io.Reader
	out        io.Writer
	logger     logging.Logger
	showPrompt bool
}

// New builds a console reading commands from in. quit is called when the
// operator asks the server to stop. The prompt is printed only when in is a
// terminal.
func New(ll LeaseLister, quit func(), in io.Reader, out io.Writer, l logging.Logger) *Console {
	c := &Console{
		leases: ll,
		quit:   quit,
		in:     in,
		out:    out,
		logger: l.With("module", "console"),
	}
	if f, ok := in.(*os.File); ok {
		c.showPrompt = term.IsTerminal(int(f.Fd()))
	}
	return c
}

// Run processes commands until quit, end of input, or ctx cancellation.
// End of input does not stop the server.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.logger.Warn(ctx, "Console input failed", "error", err.Error())
		}
	}()

	for {
		if c.showPrompt {
			fmt.Fprint(c.out, prompt)
		}

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				c.logger.Debug(ctx, "Console input closed")
				return nil
			}
			if c.exec(ctx, line) {
				return nil
			}
		}
	}
}

// exec runs one command line and reports whether the loop should end.
func (c *Console) exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "help":
		fmt.Fprintln(c.out, "Available commands: print (list), quit (exit), help")

	case "print", "list":
		c.printActive()

	case "quit", "exit":
		c.logger.Info(ctx, "Quit requested from console")
		if c.quit != nil {
			c.quit()
		}
		return true

	default:
		fmt.Fprintln(c.out, "Unknown command:", cmd)
	}

	return false
}

func (c *Console) printActive() {
	fmt.Fprintln(c.out, "Active Licenses:")
	for _, l := range c.leases.Snapshot() {
		fmt.Fprintf(c.out, "License User Name: %s\n", l.UserID)
		fmt.Fprintf(c.out, "Expiration Time: %s\n", l.ExpiresAt.Format(protocol.TimeLayout))
		fmt.Fprintln(c.out)
	}
}
