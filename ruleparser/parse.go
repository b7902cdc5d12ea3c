// The MIT License (MIT)
// Copyright (c) 2016 Jason Ish
//
// Permission is hereby granted, free of charge, to any person
// obtaining a copy of this software and associated documentation
// files (the "Software"), to deal in the Software without
// restriction, including without limitation the rights to use, copy,
// modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS
// BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN
// ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package ruleparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrIncomplete is returned when a rule ends before its option list is
// closed.
var ErrIncomplete = errors.New("incomplete rule")

// ParseError describes why a line could not be parsed as a rule.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

func newParseError(format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

// IsIncomplete returns true if the error indicates a truncated rule.
func IsIncomplete(err error) bool {
	return errors.Cause(err) == ErrIncomplete
}

// Remove leading and trailing quotes from a string.
func trimQuotes(buf string) string {
	if len(buf) >= 2 && buf[0] == '"' && buf[len(buf)-1] == '"' {
		return buf[1 : len(buf)-1]
	}
	return buf
}

// Remove leading white space from a string.
func trimLeadingWhiteSpace(buf string) string {
	return strings.TrimLeft(buf, " \t")
}

func splitAt(buf string, sep string) (string, string) {
	var trailing string

	parts := strings.SplitN(buf, sep, 2)
	if len(parts) > 1 {
		trailing = strings.TrimSpace(parts[1])
	}

	return strings.TrimSpace(parts[0]), trailing
}

// Parse the next rule option from the provided rule.
//
// The option, argument and the remainder of the rule are returned.
func parseOption(rule string) (string, string, string, error) {
	var option string
	var arg string

	rule = trimLeadingWhiteSpace(rule)

	hasArg := false
	optend := strings.IndexFunc(rule, func(r rune) bool {
		switch r {
		case ';':
			return true
		case ':':
			hasArg = true
			return true
		}
		return false
	})
	if optend < 0 {
		return option, arg, rule, ErrIncomplete
	}

	option = strings.TrimSpace(rule[0:optend])
	rule = rule[optend+1:]

	if hasArg {
		if len(rule) == 0 {
			return option, arg, rule, ErrIncomplete
		}
		escaped := false
		argend := strings.IndexFunc(rule, func(r rune) bool {
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == ';' {
				return true
			}
			return false
		})
		if argend < 0 {
			return option, arg, rule, ErrIncomplete
		}
		arg = strings.TrimSpace(rule[:argend])
		rule = rule[argend+1:]
	}

	return option, trimQuotes(arg), rule, nil
}

func parseUint(option string, arg string) (uint64, error) {
	value, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, newParseError("failed to parse %s: %s", option, arg)
	}
	return value, nil
}

// Parse an IDS rule from the provided string buffer.
func Parse(buf string) (Rule, error) {
	rule := Rule{
		Raw: buf,
	}

	buf = trimLeadingWhiteSpace(buf)

	// Check enable/disable status.
	if !strings.HasPrefix(buf, "#") {
		rule.Enabled = true
	} else {
		buf = strings.TrimPrefix(buf, "#")
		buf = trimLeadingWhiteSpace(buf)
	}

	// The seven header fields, in order.
	header := []*string{
		&rule.Action,
		&rule.Proto,
		&rule.SourceAddr,
		&rule.SourcePort,
		&rule.Direction,
		&rule.DestAddr,
		&rule.DestPort,
	}
	rem := buf
	for _, field := range header {
		*field, rem = splitAt(rem, " ")
		if len(rem) == 0 {
			return rule, ErrIncomplete
		}
	}
	if !validateDirection(rule.Direction) {
		return rule, newParseError("invalid direction: %s", rule.Direction)
	}

	if rem[0] != '(' {
		return rule, newParseError("expected (, got %s", rem[0:1])
	}
	buf = rem[1:]

	for {
		buf = trimLeadingWhiteSpace(buf)
		if len(buf) == 0 {
			return rule, ErrIncomplete
		}

		if strings.HasPrefix(buf, ")") {
			break
		}

		option, arg, rest, err := parseOption(buf)
		if err != nil {
			return rule, err
		}
		buf = rest

		rule.Options = append(rule.Options, RuleOption{option, arg})

		switch option {
		case "msg":
			rule.Msg = arg
		case "classtype":
			rule.Classtype = arg
		case "sid":
			if rule.Sid, err = parseUint(option, arg); err != nil {
				return rule, err
			}
		case "gid":
			if rule.Gid, err = parseUint(option, arg); err != nil {
				return rule, err
			}
		case "rev":
			if rule.Rev, err = parseUint(option, arg); err != nil {
				return rule, err
			}
		}
	}

	return rule, nil
}

func validateDirection(direction string) bool {
	return direction == "->" || direction == "<>" || direction == "<-"
}

// IsRuleLine returns false for blank lines and comments that do not parse
// as a disabled rule.
func IsRuleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "#") {
		_, err := Parse(trimmed)
		return err == nil
	}
	return true
}
