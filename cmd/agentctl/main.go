// Command agentctl loads a workflow manifest and executes it, printing the
// resulting record as JSON or, when the pipeline short-circuits on a
// streaming handler, forwarding UI-message events to stdout as they arrive.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
