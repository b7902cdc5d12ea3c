/* Copyright (c) 2017 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

package rules

import (
	"fmt"

	"github.com/jasonish/ruletool/ruleparser"
)

// Problem is an issue found on one line of a rule file.
type Problem struct {
	Line    int
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("line %d: %s", p.Line, p.Message)
}

// Check reports lines that do not parse as rules, rules without a sid,
// options that appear more than once where only one is expected, and sids
// used more than once in the file.
func Check(lines []string) []Problem {
	problems := []Problem{}
	seen := map[uint64]int{}

	for i, line := range lines {
		n := i + 1
		if !ruleparser.IsRuleLine(line) {
			continue
		}
		rule, err := ruleparser.Parse(line)
		if err != nil {
			problems = append(problems, Problem{n, err.Error()})
			continue
		}
		if rule.Sid == 0 {
			problems = append(problems, Problem{n, "rule has no sid"})
		} else if first, ok := seen[rule.Sid]; ok {
			problems = append(problems, Problem{n,
				fmt.Sprintf("sid %d already used on line %d", rule.Sid, first)})
		} else {
			seen[rule.Sid] = n
		}
		for _, option := range []string{"msg", "sid", "rev", "classtype"} {
			if rule.Count(option) > 1 {
				problems = append(problems, Problem{n,
					fmt.Sprintf("option %s appears %d times", option, rule.Count(option))})
			}
		}
	}

	return problems
}
