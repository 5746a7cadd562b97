// Package command provides the command parser, verb registry, fuzzy target
// matcher, and the router that dispatches player input to handlers.
package command

import "strings"

// ParseResult holds the parsed verb and arguments from an input line.
type ParseResult struct {
	// Verb is the first word of the input, lowercased.
	Verb string
	// Args are the remaining whitespace-delimited words.
	Args []string
	// Raw is the raw text after the verb, preserving inner spacing for
	// say and emote.
	Raw string
}

// Parse splits an input line into a verb and arguments. Matching is
// case-insensitive on the verb; argument case is preserved.
//
// Postcondition: Verb is empty iff the line is blank.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx < 0 {
		return ParseResult{Verb: strings.ToLower(line)}
	}

	verb := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{Verb: verb, Args: args, Raw: rest}
}
