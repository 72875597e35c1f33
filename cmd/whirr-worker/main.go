package main

import (
	"fmt"
	"os"

	"whirr/cmd/whirr-worker/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "whirr-worker: %v\n", err)
		os.Exit(1)
	}
}
