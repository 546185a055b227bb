package main

import (
	"fmt"
	"os"
	"strings"

	"microsocial/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

// commands handled by the service package.
var serviceCommands = map[string]bool{
	"serve":   true,
	"init":    true,
	"clean":   true,
	"backup":  true,
	"restore": true,
	"recount": true,
}

func main() {
	RealMain()
}

// RealMain dispatches os.Args and exits with the command's status.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch {
	case cmd == "help" || cmd == "-h" || cmd == "--help":
		printHelp()
		exit(0)
	case cmd == "version" || cmd == "--version":
		fmt.Printf("microsocial version %s\n", CliVersion)
		exit(0)
	case serviceCommands[cmd]:
		args := append([]string{cmd}, os.Args[2:]...)
		exit(service.HandleCommand(args))
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: microsocial <command> [options]
Commands:
  help             Display this help message.
  version          Show version information.
  serve            Run the API server.
  init             Initialize a new empty database.
  clean            Delete the database.
  backup           Write a backup of the database.
  restore <file>   Restore the database from a backup.
  recount          Recompute like and comment counters.
`
	fmt.Println(helpText)
}
