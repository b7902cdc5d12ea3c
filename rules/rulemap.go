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
	"path/filepath"
	"sort"
	"strings"

	"github.com/jasonish/ruletool/log"
	"github.com/jasonish/ruletool/ruleparser"
	"github.com/jasonish/ruletool/rulestore"
	"github.com/spf13/afero"
)

// Location identifies where a rule was loaded from.
type Location struct {
	Filename string
	Line     int
	Rule     ruleparser.Rule
}

func loadRulesFromFile(fs afero.Fs, ruleMap map[uint64]Location, filename string) error {
	file, err := fs.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	lines, err := rulestore.ReadLines(file)
	if err != nil {
		return err
	}

	count := 0

	for i, line := range lines {
		if !ruleparser.IsRuleLine(line) {
			continue
		}
		rule, err := ruleparser.Parse(line)
		if err != nil {
			log.Warning("Rule parse error at %s:%d: %v", filename, i+1, err)
			continue
		}
		if rule.Sid == 0 {
			continue
		}

		if existing, ok := ruleMap[rule.Sid]; ok {
			log.Warning("A rule with ID %d already exists (%s:%d).",
				rule.Sid, existing.Filename, existing.Line)
		} else {
			count++
			ruleMap[rule.Sid] = Location{
				Filename: filename,
				Line:     i + 1,
				Rule:     rule,
			}
		}
	}

	log.Debug("Loaded %d rules from %s", count, filename)

	return nil
}

// RuleMap indexes rules by signature ID.
type RuleMap struct {
	rules map[uint64]Location
}

// NewRuleMap loads rules from a list of paths. Each path may be a rule
// file, a directory of .rules files or a glob.
func NewRuleMap(fs afero.Fs, paths []string) *RuleMap {

	rules := make(map[uint64]Location)

	for _, path := range paths {

		isDir, err := afero.IsDir(fs, path)
		if err != nil {
			// Load as glob.
			matches, err := afero.Glob(fs, path)
			if err != nil || len(matches) == 0 {
				log.Warning("No matches for %s", path)
				continue
			}
			for _, m := range matches {
				if err := loadRulesFromFile(fs, rules, m); err != nil {
					log.Warning("Failed to load %s: %v", m, err)
				}
			}
		} else if isDir {
			infos, err := afero.ReadDir(fs, path)
			if err != nil {
				log.Warning("Failed to read %s: %v", path, err)
				continue
			}
			for _, info := range infos {
				if !strings.HasSuffix(info.Name(), ".rules") {
					continue
				}
				fullFilename := filepath.Join(path, info.Name())
				if err := loadRulesFromFile(fs, rules, fullFilename); err != nil {
					log.Warning("Failed to load %s: %v", fullFilename, err)
				}
			}
		} else {
			if err := loadRulesFromFile(fs, rules, path); err != nil {
				log.Warning("Failed to load %s: %v", path, err)
			}
		}

	}

	log.Info("Loaded %d rules", len(rules))

	return &RuleMap{
		rules: rules,
	}
}

func (r *RuleMap) FindBySid(sid uint64) *Location {
	if r == nil || r.rules == nil {
		return nil
	}
	if location, ok := r.rules[sid]; ok {
		return &location
	}
	return nil
}

func (r *RuleMap) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Sids returns all loaded signature IDs in ascending order.
func (r *RuleMap) Sids() []uint64 {
	if r == nil {
		return nil
	}
	sids := make([]uint64, 0, len(r.rules))
	for sid := range r.rules {
		sids = append(sids, sid)
	}
	sort.Slice(sids, func(i, j int) bool { return sids[i] < sids[j] })
	return sids
}

// NextSid returns one more than the highest sid at or above floor, or
// floor itself if none are loaded in that range.
func (r *RuleMap) NextSid(floor uint64) uint64 {
	next := floor
	for _, sid := range r.Sids() {
		if sid >= next {
			next = sid + 1
		}
	}
	return next
}
