// Command lightctl inspects light handle angles, dumps light metadata
// registries and replays scripted handle interactions against a YAML scene.
//
// Usage:
//
//	lightctl angles 40 5 --type inset
//	lightctl registry dump --registry lights.yaml
//	lightctl replay --registry lights.yaml --scene scene.yaml --script drag.json
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
