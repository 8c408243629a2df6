package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Products(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Categories(ctx context.Context) error

	ShowCart(ctx context.Context) error
	AddToCart(ctx context.Context, args []string) error
	UpdateCartItem(ctx context.Context, args []string) error
	RemoveCartItem(ctx context.Context, args []string) error
	ClearCart(ctx context.Context) error

	ShowWishlist(ctx context.Context) error
	Wish(ctx context.Context, args []string) error
	Unwish(ctx context.Context, args []string) error

	NewProduct(ctx context.Context) error
	SetPrice(ctx context.Context, args []string) error
	DeleteProduct(ctx context.Context, args []string) error
}

const (
	helpGuest = "Available commands: register, login, products [name|price|rating|newest] [desc], search <text>, filter <expr>, categories, exit"
	helpUser  = "Available commands: products [name|price|rating|newest] [desc], search <text>, filter <expr>, categories, " +
		"cart, add <productId> [qty], update <itemId> <qty>, remove <itemId>, clear, " +
		"wishlist, wish <productId>, unwish <productId>, whoami, logout, exit"
	helpAdmin = "Admin commands: newproduct, price <productId> <amount>, delproduct <productId>"
)

// runREPL starts a simple read–eval–print loop for the storefront CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches the remaining tokens to methods on 'a'. Errors returned by a
// handler are rendered with describe and the loop continues. The loop exits
// on EOF or when the user types "exit" or "quit".
//
// The prompt shows the current status (from statusFn): the signed-in email
// and the live cart and wishlist counts.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shop %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
				if a.isAdmin() {
					printlnFn(helpAdmin)
				}
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "products", "p":
			cmdErr = a.Products(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "filter":
			cmdErr = a.Filter(ctx, args)
		case "categories":
			cmdErr = a.Categories(ctx)

		case "cart":
			cmdErr = a.ShowCart(ctx)
		case "add":
			cmdErr = a.AddToCart(ctx, args)
		case "update":
			cmdErr = a.UpdateCartItem(ctx, args)
		case "remove":
			cmdErr = a.RemoveCartItem(ctx, args)
		case "clear":
			cmdErr = a.ClearCart(ctx)

		case "wishlist":
			cmdErr = a.ShowWishlist(ctx)
		case "wish":
			cmdErr = a.Wish(ctx, args)
		case "unwish":
			cmdErr = a.Unwish(ctx, args)

		case "newproduct":
			cmdErr = a.NewProduct(ctx)
		case "price":
			cmdErr = a.SetPrice(ctx, args)
		case "delproduct":
			cmdErr = a.DeleteProduct(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(describe(cmdErr))
		}
	}
}
