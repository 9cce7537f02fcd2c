// Command restui-history inspects the saved transaction history.
package main

import (
	"fmt"
	"os"

	"restui/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
