// Command aidf drives the autonomous task execution engine's CLI.
package main

import (
	"fmt"
	"os"

	"github.com/aidf-dev/aidf/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
