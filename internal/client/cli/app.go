package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/storefront/internal/client/app"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/observable"
)

// App is the interactive front end over a wired storefront.
type App struct {
	core   *app.App
	reader *bufio.Reader
	out    io.Writer

	mu        sync.Mutex
	userName  string
	admin     bool
	cartCount int
	wishCount int

	stop []observable.Unsubscribe
}

func NewApp(core *app.App, in io.Reader, out io.Writer) *App {
	return &App{core: core, reader: bufio.NewReader(in), out: out}
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	a.watch()
	defer a.unwatch()
	a.Root(ctx)
}

// watch keeps the prompt badge in step with the identity and the store
// counts. Each subscription replays the current value immediately.
func (a *App) watch() {
	a.stop = append(a.stop,
		a.core.Identity.Changes().Subscribe(a.setUser),
		a.core.Cart.Count().Subscribe(func(n int) {
			a.mu.Lock()
			a.cartCount = n
			a.mu.Unlock()
		}),
		a.core.Wishlist.Count().Subscribe(func(n int) {
			a.mu.Lock()
			a.wishCount = n
			a.mu.Unlock()
		}),
	)
}

func (a *App) unwatch() {
	for _, stop := range a.stop {
		stop()
	}
	a.stop = nil
}

func (a *App) setUser(id *models.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == nil {
		a.userName, a.admin = "", false
		return
	}
	a.userName, a.admin = id.Email, id.IsAdmin()
}

func (a *App) isLoggedIn() bool {
	return a.core.Identity.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	return a.core.Identity.IsAdmin()
}

// getStatus renders the prompt badge, e.g. "(user@example.com cart:3 wishlist:1)".
func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userName == "" {
		return "(guest)"
	}
	role := ""
	if a.admin {
		role = " admin"
	}
	return fmt.Sprintf("(%s%s cart:%d wishlist:%d)", a.userName, role, a.cartCount, a.wishCount)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
