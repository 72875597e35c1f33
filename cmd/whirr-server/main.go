package main

import (
	"fmt"
	"os"

	"whirr/cmd/whirr-server/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "whirr-server: %v\n", err)
		os.Exit(1)
	}
}
