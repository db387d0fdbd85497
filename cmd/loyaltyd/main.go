// Command loyaltyd runs the loyalty stamp bot backend.
//
// @title       Loyalty Bot API
// @version     1.0
// @description Stamp-card loyalty program: purchase vouchers, redemption, vendor directory and reports.
// @BasePath    /api/v1
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
