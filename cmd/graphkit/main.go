// Command graphkit loads, generates and exports property graphs in the
// GraphSON format.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "graphkit: %v\n", err)
		os.Exit(1)
	}
}
