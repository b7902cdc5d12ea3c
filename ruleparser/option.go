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
	"regexp"
	"strings"
)

// Options whose arguments are written as quoted strings by the editor.
var quotedOptions = map[string]bool{
	"msg":        true,
	"content":    true,
	"uricontent": true,
	"pcre":       true,
}

// QuotedOption returns true if the value of the named option is normally
// enclosed in double quotes. Unknown options are treated as unquoted.
func QuotedOption(key string) bool {
	return quotedOptions[NormalizeKey(key)]
}

// NormalizeKey strips surrounding white space and a trailing colon from a
// user supplied option name.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimSuffix(key, ":")
	return strings.TrimSpace(key)
}

// The leading group keeps a key from matching the tail of a longer option
// name, so "sid" never matches "xsid".
const optionBoundary = `(?:^|[(;\s])`

func optionPattern(key string, quoted bool) *regexp.Regexp {
	if quoted {
		return regexp.MustCompile(optionBoundary + `(` + regexp.QuoteMeta(key) + `:"[^"]*")`)
	}
	return regexp.MustCompile(optionBoundary + `(` + regexp.QuoteMeta(key) + `:[^;)]*)`)
}

func formatOption(key string, value string, quoted bool) string {
	if quoted {
		return key + `:"` + value + `"`
	}
	return key + ":" + value
}

// replaceFirst replaces the first match of the option group of re in line,
// returning false if there was no match.
func replaceFirst(re *regexp.Regexp, line string, replacement string) (string, bool) {
	loc := re.FindStringSubmatchIndex(line)
	if loc == nil {
		return line, false
	}
	return line[:loc[2]] + replacement + line[loc[3]:], true
}

// insertOption adds an option fragment before the last closing parenthesis
// of the line. Lines without one get the fragment appended.
func insertOption(line string, fragment string) string {
	if !strings.HasSuffix(fragment, ";") {
		fragment += ";"
	}
	idx := strings.LastIndex(line, ")")
	if idx < 0 {
		return strings.TrimRight(line, " \t") + " " + fragment
	}
	return line[:idx] + " " + fragment + line[idx:]
}

// SetOption sets the value of an option in a single rule line.
//
// The first existing occurrence of the option is replaced in place. If the
// option is not present it is inserted before the closing parenthesis of
// the option list. Text outside the option is never modified.
//
// Quoted values are not skipped while searching, so a key written inside
// another option's string, such as msg:"see sid:5", can be matched first.
func SetOption(line string, key string, value string, quoted bool) string {
	key = NormalizeKey(key)
	replacement := formatOption(key, value, quoted)
	if updated, ok := replaceFirst(optionPattern(key, quoted), line, replacement); ok {
		return updated
	}
	return insertOption(line, replacement)
}

var contentPattern = optionPattern("content", true)

// SetContent replaces the first content match of a rule, adding one if the
// rule has none.
func SetContent(line string, value string) string {
	if updated, ok := replaceFirst(contentPattern, line, `content:"`+value+`"`); ok {
		return updated
	}
	return SetOption(line, "content", value, true)
}
