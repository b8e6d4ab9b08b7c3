package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		if err != errTasksFailed {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
