// Lsdbench is a benchmarking and verification tool for the lsdshuffle
// partitioned radix sort.
//
// Usage:
//
//	go run ./cmd/lsdbench run --keys 16777216 --partitions 4 --verify
//	go run ./cmd/lsdbench gen --keys 1000000 --output keys.lsdk
//	go run ./cmd/lsdbench run --input keys.lsdk --output sorted.lsdk
//	go run ./cmd/lsdbench verify-engine --step-width 11
//
// Every command accepts --config with a TOML file of the same settings.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error running lsdbench:", err)
		os.Exit(1)
	}
}
