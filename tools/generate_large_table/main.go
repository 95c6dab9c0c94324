// Large Rate Table Generator
//
// This tool generates a large YAML rate table for performance testing
// and profiling. It creates many replacement chains of varying length to
// stress-test loading, validation and chain resolution.
//
// Usage:
//
//	go run main.go > large.yaml
//	go run main.go 500000 > large.yaml  # Specify target record count
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"
)

const defaultTargetRecords = 100_000

func main() {
	targetRecords := defaultTargetRecords
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid record count: %s\n", os.Args[1])
			os.Exit(1)
		}
		targetRecords = n
	}

	rng := rand.New(rand.NewSource(42))

	id := int64(0)
	for id < int64(targetRecords) {
		// Chains of 1 to 8 links, each link lasting 1 to 36 months. The
		// last link stays open-ended so every chain has a current value.
		links := 1 + rng.Intn(8)
		start := time.Date(1990+rng.Intn(30), time.Month(1+rng.Intn(12)), 1, 0, 0, 0, 0, time.UTC)
		isDefault := rng.Intn(10) == 0

		for i := 0; i < links && id < int64(targetRecords); i++ {
			id++
			value := fmt.Sprintf("0.%02d", 1+rng.Intn(40))

			fmt.Printf("- id: %d\n", id)
			fmt.Printf("  valid_from: %s\n", start.Format("2006-01-02"))

			last := i == links-1 || id == int64(targetRecords)
			if !last {
				end := start.AddDate(0, 1+rng.Intn(36), 0)
				fmt.Printf("  valid_until: %s\n", end.Format("2006-01-02"))
				fmt.Printf("  replaced_by_id: %d\n", id+1)
				start = end
			}
			fmt.Printf("  value: %q\n", value)
			if isDefault {
				fmt.Printf("  is_default: true\n")
			}
		}
	}
}
