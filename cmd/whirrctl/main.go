package main

import (
	"fmt"
	"os"

	"whirr/cmd/whirrctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "whirrctl: %v\n", err)
		os.Exit(1)
	}
}
