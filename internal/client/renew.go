package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/mls/internal/clock"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
)

// renewMargin is added to Expired before asking again, so the server has
// swept the old lease by then.
const renewMargin = time.Second

// ReportFunc receives every response or request error.
type ReportFunc func(resp protocol.Response, err error)

// Renew requests a licence, reports the outcome, and waits until the grant
// expires (plus a margin) or retry has passed after a denial. It repeats
// until ctx is cancelled.
func Renew(ctx context.Context, api *LicenseAPI, clk clock.Clock, retry time.Duration, report ReportFunc) error {
	for {
		resp, err := api.GetLicenseToken(ctx)
		if ctx.Err() != nil {
			return nil
		}
		report(resp, err)

		wait := retry
		if err == nil && resp.Licence {
			if exp, perr := resp.ExpiresAt(); perr == nil {
				wait = exp.Add(renewMargin).Sub(clk.Now())
			}
		}
		if wait < renewMargin {
			wait = renewMargin
		}

		select {
		case <-ctx.Done():
			return nil
		case <-clk.After(wait):
		}
	}
}

// PrintResponse writes resp in the human readable form.
func PrintResponse(w io.Writer, resp protocol.Response) {
	fmt.Fprintf(w, "%s's licence status:\n", resp.LicenceUserName)
	if resp.Licence {
		fmt.Fprintf(w, "Active\n%s\n", resp.Expired)
		return
	}
	fmt.Fprintln(w, resp.Description)
}
