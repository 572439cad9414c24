// Package parser provides utilities for parsing structured content out of LLM responses.
package parser

import "strings"

const (
	openTag  = "<thinking>"
	closeTag = "</thinking>"
)

// SplitThinking separates <thinking> sections from the rest of a response.
//
// Tags are matched literally, so '<' and '>' inside thinking content do not
// end a section early. An unclosed section runs to the end of text.
// Sections are concatenated in order; the message is trimmed of surrounding
// whitespace.
func SplitThinking(text string) (thinking, message string) {
	var th, msg strings.Builder
	rest := text
	for {
		start := strings.Index(rest, openTag)
		if start < 0 {
			msg.WriteString(rest)
			break
		}
		msg.WriteString(rest[:start])
		rest = rest[start+len(openTag):]

		end := strings.Index(rest, closeTag)
		if end < 0 {
			th.WriteString(rest)
			break
		}
		th.WriteString(rest[:end])
		rest = rest[end+len(closeTag):]
	}
	return th.String(), strings.TrimSpace(msg.String())
}

// StripThinking returns text without its <thinking> sections.
func StripThinking(text string) string {
	_, message := SplitThinking(text)
	return message
}
