// Command budgetctl computes budgets offline against a TOML catalog.
package main

import (
	"os"
	"time"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		os.Exit(1)
	}
}
