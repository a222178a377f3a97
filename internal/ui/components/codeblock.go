// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/planterm/planterm/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock renders a fenced code block with syntax highlighting.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

// Render renders the block with a language badge and highlighted body.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")

	language := c.Language
	if language == "" {
		language = detectLanguage(code)
	}

	var sb strings.Builder
	if language != "" {
		badge := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
		sb.WriteString(badge.Render(language))
		sb.WriteString("\n")
	}
	sb.WriteString(highlightCode(code, language))
	return sb.String()
}

// ParseCodeBlocks replaces fenced ``` blocks in text with highlighted
// renderings, leaving the surrounding prose untouched.
func ParseCodeBlocks(text string, maxWidth int) string {
	if !strings.Contains(text, "```") {
		return text
	}

	var sb strings.Builder
	rest := text
	for {
		open := strings.Index(rest, "```")
		if open == -1 {
			sb.WriteString(rest)
			break
		}
		closing := strings.Index(rest[open+3:], "```")
		if closing == -1 {
			sb.WriteString(rest)
			break
		}
		closing += open + 3

		sb.WriteString(rest[:open])

		block := rest[open+3 : closing]
		language := ""
		if nl := strings.IndexByte(block, '\n'); nl != -1 {
			language = strings.TrimSpace(block[:nl])
			block = block[nl+1:]
		}

		cb := NewCodeBlock(language, block)
		cb.MaxWidth = maxWidth
		sb.WriteString(cb.Render())

		rest = rest[closing+3:]
	}
	return sb.String()
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies ANSI syntax highlighting via chroma. Falls back to
// the plain text on any failure.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// detectLanguage guesses the language of a code snippet.
func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
