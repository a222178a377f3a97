// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the planterm command-line interface.
//
// It parses os.Args into a Command plus Args and runs everything that is
// not the full-screen TUI: one-shot questions (ask), a line-based REPL
// (chat), the HTTP API server (serve), backend health checks (status), and
// config management (config).
//
// # Key Types
//
//   - Command: which subcommand to run
//   - Args: parsed flags and positional arguments
//   - ArgParser: shared flag/positional parser used by all subcommands
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//		err = cli.RunAsk(args)
//	case cli.CmdServe:
//		err = cli.RunServe(args)
//	}
package cli
