// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for all CLI commands.
package cli

import "strings"

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser parses command arguments consistently across subcommands.
// It handles:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments, with the first treated as the subcommand
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// boolOnlyFlags never consume the following argument as a value.
var boolOnlyFlags = map[string]bool{
	"verbose": true,
	"v":       true,
}

// NewArgParser parses raw arguments.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")

		// --flag=value
		if eq := strings.IndexByte(name, '='); eq != -1 {
			value := name[eq+1:]
			name = name[:eq]
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			i++
			continue
		}

		// --flag value, unless the flag is boolean or the next arg is a flag
		if !boolOnlyFlags[name] && i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i += 2
			continue
		}

		p.boolFlags[name] = true
		i++
	}

	return p
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	if len(p.positional) == 0 {
		return ""
	}
	return p.positional[0]
}

// Flag returns the value of a string flag, or "".
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// FlagOr returns the flag value, or fallback when unset.
func (p *ArgParser) FlagOr(name, fallback string) string {
	if v, ok := p.flags[name]; ok {
		return v
	}
	return fallback
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// Positional returns all positional arguments.
func (p *ArgParser) Positional() []string {
	return p.positional
}

// Join returns the positional arguments joined as one string.
func (p *ArgParser) Join() string {
	return strings.Join(p.positional, " ")
}
