// Command chatextract pulls the latest answer out of an open AI chat tab,
// optionally submitting a query first.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/roelfdiedericks/chatextract/internal/browser"
)

const version = "0.3.1"

const description = `Extract the latest answer from an AI chat page open in your browser.

With a query, the query is typed into the page and submitted before
extraction. Without one, whatever is on the page is extracted as is.
The browser must already be running with the site open in a tab
(or use --new-tab).`

// ControllerFactory builds the browser controller for one run.
type ControllerFactory func(app string, timeout time.Duration) (browser.Controller, error)

func defaultController(app string, timeout time.Duration) (browser.Controller, error) {
	ctrl, err := browser.NewAppleScript(app, timeout)
	if err != nil {
		return nil, err
	}
	return ctrl, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, defaultController))
}

// exitCode is raised through kong.Exit so that help and version output
// return to run instead of terminating the process.
type exitCode int

func run(args []string, stdout, stderr io.Writer, newController ControllerFactory) (code int) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("chatextract"),
		kong.Description(description),
		kong.Writers(stdout, stderr),
		kong.Vars{"version": "chatextract " + version},
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
			if code > 1 {
				code = 1
			}
		}
	}()

	if _, err := parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return 1
	}

	return cli.Run(stdout, stderr, newController)
}
