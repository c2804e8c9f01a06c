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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Activity(ctx context.Context) error
	EnableSecondFactor(ctx context.Context) error
	DisableSecondFactor(ctx context.Context) error
	SecondFactorStatus(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          authenticate (asks for a one-time code when needed)
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - whoami         show the current credential
//	  - activity       list logins per day
//	  - 2fa            show second factor status
//	  - 2fa-enable     enroll an authenticator app
//	  - 2fa-disable    turn the second factor off
//	  - logout         revoke the credential
//	  - exit | quit    leave the program
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gophauth %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, activity, 2fa, 2fa-enable, 2fa-disable, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "activity":
			_ = a.Activity(ctx)

		case "2fa":
			_ = a.SecondFactorStatus(ctx)

		case "2fa-enable":
			_ = a.EnableSecondFactor(ctx)

		case "2fa-disable":
			_ = a.DisableSecondFactor(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
