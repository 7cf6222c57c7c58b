package commands

import (
	"strings"

	"github.com/urfave/cli/v2"
)

const helpCommandName = "help"

// HelpArgs detects a help request anywhere on the command line and rewrites the arguments
// to "<prog> help [command]". Help wins over every other flag, including invalid ones.
// Values of flags that take a value are never treated as a help request.
func HelpArgs(app *cli.App, args []string) ([]string, bool) {
	if len(args) == 0 {
		return args, false
	}

	var (
		command     *cli.Command
		commandSeen bool
		requested   bool
	)

	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
			if name == "h" || name == helpCommandName {
				requested = true
				continue
			}

			flags := app.Flags
			if command != nil {
				flags = command.Flags
			}
			if !hasValue && takesValue(flags, name) {
				i++
			}
			continue
		}

		switch {
		case arg == helpCommandName:
			requested = true
		case !commandSeen:
			commandSeen = true
			command = findCommand(app, arg)
		}
	}

	if !requested {
		return args, false
	}

	if command == nil {
		return []string{args[0], helpCommandName}, true
	}
	return []string{args[0], helpCommandName, command.Name}, true
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, command := range app.Commands {
		if command.HasName(name) {
			return command
		}
	}
	return nil
}

func takesValue(flags []cli.Flag, name string) bool {
	for _, flag := range flags {
		for _, flagName := range flag.Names() {
			if flagName != name {
				continue
			}
			if docFlag, ok := flag.(cli.DocGenerationFlag); ok {
				return docFlag.TakesValue()
			}
			return true
		}
	}
	return false
}
