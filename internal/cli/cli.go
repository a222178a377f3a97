// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for the planterm CLI.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdServe
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model   string
	Verbose bool

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after command and flag parsing
	Raw []string
}

const usageText = `planterm - chat with an LLM, get structured project plans

planterm relays your messages to a local or cloud LLM. Ask for a
"project plan" and the reply comes back with a structured plan you can
browse as a collapsible outline.

Usage:
  planterm                      Start the chat TUI
  planterm ask <question>       Ask a single question
  planterm chat                 Interactive chat in the terminal
  planterm serve                Run the HTTP API server
  planterm status               Check backend connectivity
  planterm config <subcommand>  Show or edit configuration
  planterm version              Print version information

Flags:
  -m, --model NAME    Use a specific model (overrides config)
  -v, --verbose       Verbose output

Config subcommands:
  show                Print the active configuration
  path                Print the config file location
  init                Write a default config file
  set <key> <value>   Set a configuration value

Environment:
  PLANTERM_PROVIDER   ollama, openai, or anthropic
  PLANTERM_MODEL      Model for the active provider
  OPENAI_API_KEY      OpenAI API key
  ANTHROPIC_API_KEY   Anthropic API key
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(raw []string) (Command, Args) {
	args := Args{}

	if len(raw) == 0 {
		return CmdTUI, args
	}

	cmd := CmdTUI
	rest := raw
	switch raw[0] {
	case "ask":
		cmd = CmdAsk
		rest = raw[1:]
	case "chat":
		cmd = CmdChat
		rest = raw[1:]
	case "serve":
		cmd = CmdServe
		rest = raw[1:]
	case "status":
		cmd = CmdStatus
		rest = raw[1:]
	case "config":
		cmd = CmdConfig
		rest = raw[1:]
	case "version", "--version":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	}

	parser := NewArgParser(rest)
	args.Model = parser.FlagOr("model", parser.Flag("m"))
	args.Verbose = parser.BoolFlag("verbose") || parser.BoolFlag("v")
	args.Raw = parser.Positional()

	switch cmd {
	case CmdAsk:
		args.Query = parser.Join()
	case CmdConfig:
		args.Subcommand = parser.Subcommand()
		pos := parser.Positional()
		if len(pos) > 1 {
			args.ConfigKey = pos[1]
		}
		if len(pos) > 2 {
			args.ConfigVal = pos[2]
		}
	}

	return cmd, args
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("planterm %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
