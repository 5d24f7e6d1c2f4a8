// Command decluttr is the command-line client.
package main

import (
	"os"

	"github.com/shubh-37/decluttr/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
