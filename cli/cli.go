// Package cli provides the command-line interface for the Snipe-IT
// loan agreement and accessory transfer workflows.
package cli

import (
	"fmt"
	"os"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	if len(args) < 2 {
		Usage()
		return
	}

	command := args[1]

	switch command {
	case "inventory":
		InventoryCommand(args)
	case "transfer":
		TransferCommand(args)
	case "version":
		VersionCommand()
	case "help", "-h", "--help":
		Usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		Usage()
	}
}

// Usage prints the CLI usage information.
func Usage() {
	fmt.Printf("snipeit-tools - equipment loan agreements from Snipe-IT\n\n")
	fmt.Printf("Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  inventory  Generate signable loan agreement PDFs for users")
	fmt.Println("  transfer   Move checked-out accessories between two users")
	fmt.Println("  version    Show version information")
	fmt.Println("  help       Show this help message")
	fmt.Println("")
	fmt.Printf("Use '%s <command> -h' for command-specific help\n", os.Args[0])
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Printf("  %s inventory -config config.yml\n", os.Args[0])
	fmt.Printf("  %s inventory -config config.yml -user \"Jane Doe\"\n", os.Args[0])
	fmt.Printf("  %s transfer -config config.yml\n", os.Args[0])
}

// VersionCommand prints version information.
func VersionCommand() {
	fmt.Printf("snipeit-tools version %s\n", Version)
	fmt.Printf("Build time: %s\n", BuildTime)
}
