// ABOUTME: Entry point for the commtrack CLI, web server, TUI, and MCP server
// ABOUTME: Hands os.Args to the cobra command tree
package main

import (
	"os"

	"github.com/harperreed/commtrack/cli"
)

const version = "0.2.0"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
