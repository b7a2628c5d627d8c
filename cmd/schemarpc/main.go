// Command schemarpc compiles RPC declaration files into manifests and works
// with the result: validating request bodies, generating Go validators and
// exporting JSON Schema.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "schemarpc:", err)
		}
		os.Exit(1)
	}
}
