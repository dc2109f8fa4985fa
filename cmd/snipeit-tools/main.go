// Command snipeit-tools generates signable equipment loan agreements
// from Snipe-IT inventory data and moves accessories between users.
//
// Usage:
//
//	snipeit-tools <command> [options]
//
// Commands:
//
//	inventory  Generate signable loan agreement PDFs for users
//	transfer   Move checked-out accessories between two users
//	version    Show version information
//	help       Show help message
//
// Examples:
//
//	# Agreements for every user
//	snipeit-tools inventory -config config.yml
//
//	# One user only
//	snipeit-tools inventory -config config.yml -user "Jane Doe"
//
//	# Move accessories without the confirmation prompt
//	snipeit-tools transfer -config config.yml -from 7 -to 8 -yes
package main

import (
	"os"

	"github.com/Arconz/SnipeIT-Tools/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/snipeit-tools
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	cli.Run(os.Args)
}
