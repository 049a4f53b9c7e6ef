// Copyright 2018-present Network Optix, Inc. Licensed under MPL 2.0: www.mozilla.org/MPL/2.0/
package cli

import (
	"fmt"
	"strings"

	"github.com/gwangyi/pysgutils/pkg/sglib"
)

type ErrHelpPageRequested struct {
	helpMessage string
}

func (err ErrHelpPageRequested) Error() string {
	return err.helpMessage
}

type ErrCommandNotFound struct {
	commandName string
}

func (err ErrCommandNotFound) Error() string {
	return fmt.Sprintf("unknown command '%s'", err.commandName)
}

type ErrInvalidOption struct {
	option string
}

func (err ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid option -- '%s'", err.option)
}

type ErrMissingParameters struct {
	helpLines []string
}

func (err ErrMissingParameters) Error() string {
	return "missing parameters:\n" + strings.Join(err.helpLines, "\n")
}

type parameter struct {
	value            string
	shortFlag        string
	name             string
	description      string
	shortDescription string
	required         bool
	boolean          bool
	set              bool
}

func (param parameter) getFullCmdlineArgument() string {
	return "--" + param.name
}

func (param parameter) found(argument string) bool {
	if argument == param.getFullCmdlineArgument() || argument == param.shortFlag {
		return true
	}
	return strings.HasPrefix(argument, param.getFullCmdlineArgument()+"=")
}

func (param parameter) valueInNextCmd(argument string) bool {
	return argument == param.getFullCmdlineArgument() || argument == param.shortFlag
}

func (param parameter) help() string {
	return fmt.Sprintf(
		"    %s/--%s - %s",
		param.shortFlag,
		param.name,
		param.description,
	)
}

func (param parameter) usage() string {
	if param.boolean {
		return fmt.Sprintf("[%s|--%s]", param.shortFlag, param.name)
	}
	return fmt.Sprintf(
		"[%s|--%s %s]",
		param.shortFlag,
		param.name,
		param.shortDescription,
	)
}

func (param *parameter) extract(value string) {
	param.value = value
	param.set = true
}

type Command struct {
	name        string
	parameters  map[string]*parameter
	description string
}

func newCommand(name, description string) *Command {
	return &Command{
		name:        name,
		parameters:  make(map[string]*parameter),
		description: description,
	}
}

func (command *Command) findParameter(commandLineArgument string) *parameter {
	for _, argument := range command.parameters {
		if argument.set {
			continue
		}
		if argument.found(commandLineArgument) {
			return argument
		}
	}
	return nil
}

func (command Command) usage() string {
	eachCommandUsages := make([]string, 0, len(command.parameters))
	for _, arg := range command.parameters {
		eachCommandUsages = append(eachCommandUsages, arg.usage())
	}
	if len(eachCommandUsages) > 0 {
		return fmt.Sprintf(
			"%s %s",
			command.name,
			strings.Join(eachCommandUsages, " "),
		)
	}
	return command.name
}

func (command Command) Help() string {
	eachCommandsDescriptions := make([]string, 0, len(command.parameters))
	for _, arg := range command.parameters {
		eachCommandsDescriptions = append(eachCommandsDescriptions, arg.help())
	}
	if len(eachCommandsDescriptions) > 0 {
		return fmt.Sprintf(
			"%s\n  Options:\n%s",
			command.description,
			strings.Join(eachCommandsDescriptions, "\n"),
		)
	}
	return command.description + "\n"
}

func (command *Command) ParseArgs(args []string) error {
	var currentArgument *parameter
	for index, commandLineArgument := range args {
		if index == 0 {
			if commandLineArgument == "--help" || commandLineArgument == "-h" {
				return &ErrHelpPageRequested{helpMessage: command.Help()}
			}
		}
		// if previous cmdline argument was a parameter name, then this
		// command line argument must be its value, for instance
		// "--timeout 10" - 2 command line arguments, first is name,
		// second is value
		if currentArgument != nil {
			currentArgument.extract(commandLineArgument)
			currentArgument = nil
			continue
		}
		parameter := command.findParameter(commandLineArgument)
		if parameter == nil {
			return &ErrInvalidOption{option: commandLineArgument}
		}
		if parameter.boolean {
			parameter.extract("true")
			continue
		}
		if parameter.valueInNextCmd(commandLineArgument) {
			currentArgument = parameter
			continue
		}
		// parameter name and value separated with "=", e.g. --timeout=10
		parameterNameValuePair := strings.SplitN(commandLineArgument, "=", 2)
		if len(parameterNameValuePair) != 2 {
			return &ErrInvalidOption{option: commandLineArgument}
		}
		parameter.extract(parameterNameValuePair[1])
	}
	if currentArgument != nil {
		return &ErrInvalidOption{option: currentArgument.getFullCmdlineArgument()}
	}
	missingParameterHelpLines := []string{}
	for _, parameter := range command.parameters {
		if !parameter.set && parameter.required {
			missingParameterHelpLines = append(missingParameterHelpLines, parameter.help())
		}
	}
	if len(missingParameterHelpLines) > 0 {
		return &ErrMissingParameters{helpLines: missingParameterHelpLines}
	}
	return nil
}

func (command *Command) AddParameter(
	short string,
	name string,
	description string,
	shortDescription string,
	required bool,
) *Command {
	command.parameters[name] = &parameter{
		shortFlag:        short,
		name:             name,
		description:      description,
		required:         required,
		shortDescription: shortDescription,
	}
	return command
}

// AddFlag registers a boolean parameter which takes no value; giving the
// flag on the command line sets it.
func (command *Command) AddFlag(
	short string,
	name string,
	description string,
) *Command {
	command.parameters[name] = &parameter{
		shortFlag:   short,
		name:        name,
		description: description,
		boolean:     true,
	}
	return command
}

func (command Command) GetParameter(parameterName string) (string, error) {
	value, ok := command.parameters[parameterName]
	if !ok {
		return "", fmt.Errorf("missing parameter %s", parameterName)
	}
	if !value.set {
		return "", fmt.Errorf("missing parameter %s", parameterName)
	}
	return value.value, nil
}

// GetParameterDefault returns the parameter value, or fallback when the
// command line did not set it.
func (command Command) GetParameterDefault(parameterName, fallback string) string {
	value, err := command.GetParameter(parameterName)
	if err != nil {
		return fallback
	}
	return value
}

// GetFlag reports whether a boolean parameter was given.
func (command Command) GetFlag(parameterName string) bool {
	value, ok := command.parameters[parameterName]
	return ok && value.set
}

// GetNumericParameter parses the parameter value the way SCSI utilities
// accept numbers (decimal, hex, unit multipliers). Returns fallback when
// the command line did not set the parameter.
func (command Command) GetNumericParameter(parameterName string, fallback int) (int, error) {
	value, err := command.GetParameter(parameterName)
	if err != nil {
		return fallback, nil
	}
	parsed, err := sglib.ParseNum(value)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", parameterName, err)
	}
	return parsed, nil
}

type CommandList struct {
	name        string
	description string
	commands    map[string]*Command
	// this field is set after parsing
	// command line arguments
	currentCommandName string
}

func (cmdList CommandList) usages() string {
	commandUsages := make([]string, 0, len(cmdList.commands))
	for _, cmd := range cmdList.commands {
		commandUsages = append(commandUsages, fmt.Sprintf("%s %s", cmdList.name, cmd.usage()))
	}
	return strings.Join(commandUsages, "\n") + "\n"
}

func (cmdList CommandList) Help() string {
	commandDescriptions := make([]string, 0, len(cmdList.commands))
	for name, cmd := range cmdList.commands {
		commandDescriptions = append(commandDescriptions, fmt.Sprintf("* '%s': %s", name, cmd.Help()))
	}
	return fmt.Sprintf(
		"%s - %s",
		cmdList.name,
		cmdList.description,
	) +
		"\nUsage:\n" +
		cmdList.usages() +
		"\nSupported commands:\n" +
		strings.Join(commandDescriptions, "\n\n")
}

func (cmdList *CommandList) AddCommand(name, description string) *Command {
	command := newCommand(name, description)
	cmdList.commands[name] = command
	return command
}

func (cmdList CommandList) GetCommand(name string) (*Command, bool) {
	value, ok := cmdList.commands[name]
	return value, ok
}

func (cmdList *CommandList) Parse(args []string) error {
	if len(args) < 2 {
		return &ErrHelpPageRequested{helpMessage: cmdList.Help()}
	}
	commandName := args[1]
	commandArgs := args[2:]
	command, ok := cmdList.GetCommand(commandName)
	if !ok {
		if commandName == "--help" || commandName == "help" || commandName == "-h" {
			return &ErrHelpPageRequested{helpMessage: cmdList.Help()}
		}
		return &ErrCommandNotFound{commandName: commandName}
	}
	err := command.ParseArgs(commandArgs)
	if err != nil {
		return err
	}
	cmdList.currentCommandName = commandName
	return nil
}

func (cmdList CommandList) GetCurrentCommand() (commandName string, command *Command) {
	if cmdList.currentCommandName == "" {
		return "", nil
	}
	cmd, ok := cmdList.GetCommand(cmdList.currentCommandName)
	if !ok {
		return "", nil
	}
	commandName = cmdList.currentCommandName
	command = cmd
	return
}

func NewCommandList(name, description string) *CommandList {
	return &CommandList{
		name:        name,
		description: description,
		commands:    make(map[string]*Command),
	}
}
