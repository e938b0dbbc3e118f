// Command fieldblocks renders serialized block content from the command line
// and serves the editor fetch API over HTTP.
//
// Configuration is read from fieldblocks.yaml (or --config), an optional .env
// file and FIELDBLOCKS_ prefixed environment variables, with flags taking
// precedence:
//
//	fieldblocks render --editing page.json
//	fieldblocks save --owner post-42 page.json
//	FIELDBLOCKS_STORAGE_DRIVER=redis fieldblocks serve --addr :9000
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
