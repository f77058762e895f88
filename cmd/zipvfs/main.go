// Command zipvfs lists and reads entries of zip and jar archives through the
// zipvfs handle cache.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
