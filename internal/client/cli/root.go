package cli

import (
	"context"
)

// Root greets the user, reports a restored session and runs the REPL.
func (a *App) Root(ctx context.Context) {
	a.printf("Welcome to the storefront CLI (type 'help' for commands)\n")
	if id := a.core.Identity.Current(); id != nil {
		a.printf("Welcome back, %s!\n", id.DisplayName())
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
