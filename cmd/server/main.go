// Package main implements the scry-scheduler command. It serves the FSRS
// scheduling API, applies the database migrations and computes offline review
// forecasts.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
