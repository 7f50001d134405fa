// Command tripctl runs the meeting/trip correlation engine offline against a
// JSON dataset loaded into the in-memory store.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
