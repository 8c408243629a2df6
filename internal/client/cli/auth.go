package cli

import (
	"context"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
	getPassword   = GetPassword
)

// Register prompts for an email, a name and a password and creates a
// standard account, which becomes the signed-in identity.
//
// The password byte slice is wiped before returning. Any I/O or service
// error is returned unchanged.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	first, err := getSimpleText(a.reader, "Enter first name", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Enter last name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.core.Identity.Register(ctx, models.Profile{
		Email:     email,
		Password:  string(password),
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return err
	}

	a.printf("Welcome, %s!\n", res.Identity.DisplayName())
	return nil
}

// Login prompts for credentials and signs in. The cart and wishlist of the
// identity are loaded before Login returns.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.core.Identity.Authenticate(ctx, models.Credentials{Email: email, Password: string(password)})
	if err != nil {
		return err
	}

	a.printf("Login successful. Hello, %s!\n", res.Identity.DisplayName())
	return nil
}

// Logout ends the session. The session is dropped even when the stored
// records cannot be deleted; that error is returned.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if err := a.core.Identity.SignOut(ctx); err != nil {
		return err
	}
	a.printf("Signed out.\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id := a.core.Identity.Current()
	if id == nil {
		return common.ErrNotAuthenticated
	}
	a.printf("%s <%s> role=%s id=%d\n", id.DisplayName(), id.Email, id.Role, id.ID)
	return nil
}
