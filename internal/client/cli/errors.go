package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storefront/internal/common"
)

// errUsage marks a command invoked with malformed arguments.
var errUsage = errors.New("usage")

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// describe turns a command error into the message shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, common.ErrForbidden):
		return "This command requires the admin role."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, common.ErrNotFound):
		return "No account with that email."
	case errors.Is(err, common.ErrAlreadyExists):
		return "An account with that email already exists."
	case errors.Is(err, common.ErrProductNotFound):
		return "No such product."
	case errors.Is(err, common.ErrItemNotFound):
		return "No such item."
	case errors.Is(err, common.ErrDuplicateEntry):
		return "Already in your wishlist."
	case errors.Is(err, common.ErrInvalidQuantity):
		return "Quantity must be a positive number."
	case errors.Is(err, common.ErrValidation):
		return "Invalid input: " + err.Error()
	case errors.Is(err, common.ErrSimulatedFailure):
		return "The service is unavailable, please try again."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Cancelled."
	default:
		return "Error: " + err.Error()
	}
}
