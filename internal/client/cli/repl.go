package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Products(ctx context.Context) error
	More(ctx context.Context) error
	Search(ctx context.Context, text string) error
	Field(ctx context.Context, name string) error
	Enter(ctx context.Context) error
	POS(ctx context.Context, text string) error
	Catalog(ctx context.Context) error

	New(ctx context.Context) error
	Edit(ctx context.Context, n int) error
	Set(ctx context.Context, field, value string) error
	AddImage(ctx context.Context, path string) error
	Unadd(ctx context.Context, n int) error
	RmImage(ctx context.Context, id int64) error
	Save(ctx context.Context) error
	Cancel(ctx context.Context) error

	Chars(ctx context.Context) error
	CharsMore(ctx context.Context) error

	Dark(ctx context.Context) error
	Lang(ctx context.Context, code string) error
	Logs(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, chars, chars-more, dark, lang <code>, logs, exit"
	helpLoggedIn  = "Available commands: products, more, search <text>, field <name>, enter, pos <text>, catalog, " +
		"new, edit <n>, set <field> <value>, addimage <path>, unadd <n>, rmimage <id>, save, cancel, " +
		"chars, chars-more, dark, lang <code>, logs, logout, exit"
)

// commands that need a signed-in session
var protected = map[string]bool{
	"products": true, "more": true, "search": true, "field": true, "enter": true, "pos": true,
	"catalog": true, "new": true, "edit": true, "set": true, "addimage": true, "unadd": true,
	"rmimage": true, "save": true, "cancel": true, "logout": true,
}

var errUsage = errors.New("usage")

// runREPL starts a read–eval–print loop for the GophStore CLI.
//
// It reads a line from in, parses the first token as the command and
// dispatches to methods on 'a'. The rest of the line is the argument; "search"
// and "set" keep its inner spaces. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Command handlers report their own failures; the loop only prints usage
// hints, so a failing command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gs> %s > ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)
		if cmd == "" {
			continue
		}
		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if protected[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}
		if err := dispatch(ctx, a, cmd, rest); errors.Is(err, errUsage) {
			printlnFn(err.Error())
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil

	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)

	case "products":
		return a.Products(ctx)
	case "more":
		return a.More(ctx)
	case "search":
		return a.Search(ctx, arg)
	case "field":
		if arg == "" {
			return fmt.Errorf("%w: field <description|reference|categoria|unidad|tax>", errUsage)
		}
		return a.Field(ctx, arg)
	case "enter":
		return a.Enter(ctx)
	case "pos":
		return a.POS(ctx, arg)
	case "catalog":
		return a.Catalog(ctx)

	case "new":
		return a.New(ctx)
	case "edit":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: edit <n>", errUsage)
		}
		return a.Edit(ctx, n)
	case "set":
		field, value, ok := strings.Cut(arg, " ")
		if !ok && field == "" {
			return fmt.Errorf("%w: set <field> <value>", errUsage)
		}
		return a.Set(ctx, field, strings.TrimSpace(value))
	case "addimage":
		if arg == "" {
			return fmt.Errorf("%w: addimage <path>", errUsage)
		}
		return a.AddImage(ctx, arg)
	case "unadd":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: unadd <n>", errUsage)
		}
		return a.Unadd(ctx, n)
	case "rmimage":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: rmimage <id>", errUsage)
		}
		return a.RmImage(ctx, id)
	case "save":
		return a.Save(ctx)
	case "cancel":
		return a.Cancel(ctx)

	case "chars":
		return a.Chars(ctx)
	case "chars-more":
		return a.CharsMore(ctx)

	case "dark":
		return a.Dark(ctx)
	case "lang":
		if arg == "" {
			return fmt.Errorf("%w: lang <code>", errUsage)
		}
		return a.Lang(ctx, arg)
	case "logs":
		return a.Logs(ctx)
	}
	printlnFn("Unknown command:", cmd)
	return nil
}
