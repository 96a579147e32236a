// Command tzresolve looks up the offsets and abbreviation in effect in a
// time zone at an instant, classifies wall clock times that fall into a
// daylight saving gap or overlap, and lists, describes and verifies the
// zones of the zoneinfo directories and YAML table files it is given.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tzperiods/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		logging.Fatal(ctx, "tzresolve failed", "error", err)
	}
}
