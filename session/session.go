/* Copyright (c) 2016 Jason Ish
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

// Package session implements editing of a single rule file: selecting a
// line, applying option edits to a candidate copy of it and then either
// saving or discarding the result.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jasonish/ruletool/log"
	"github.com/jasonish/ruletool/ruleparser"
	"github.com/jasonish/ruletool/rules"
	"github.com/jasonish/ruletool/rulestore"
	"github.com/jasonish/ruletool/util"
	"github.com/pkg/errors"
)

type State int

const (
	Viewing State = iota
	Selecting
	Editing
	Saved
	Discarded
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Selecting:
		return "selecting"
	case Editing:
		return "editing"
	case Saved:
		return "saved"
	case Discarded:
		return "discarded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrInvalidState  = errors.New("operation not allowed in current state")
	ErrInvalidNumber = errors.New("invalid line number")
	ErrEmptyLine     = errors.New("empty rule")
)

// ParseLineNumber converts user input to a line number. Range checking is
// left to the operation using it.
func ParseLineNumber(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidNumber, "%q", strings.TrimSpace(input))
	}
	return n, nil
}

// Session is an edit session over one rule file.
type Session struct {
	store   *rulestore.Store
	ruleMap *rules.RuleMap

	state     State
	selected  int
	original  string
	candidate string
}

func New(store *rulestore.Store) *Session {
	return &Session{
		store: store,
		state: Viewing,
	}
}

// SetRuleMap attaches a sid index used to detect sid collisions.
func (s *Session) SetRuleMap(ruleMap *rules.RuleMap) {
	s.ruleMap = ruleMap
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Store() *rulestore.Store {
	return s.store
}

// Selected returns the selected line number, or 0 if there is none.
func (s *Session) Selected() int {
	if s.state == Selecting || s.state == Editing {
		return s.selected
	}
	return 0
}

// Candidate returns the line being edited.
func (s *Session) Candidate() string {
	return s.candidate
}

// Original returns the selected line as it was when editing began.
func (s *Session) Original() string {
	return s.original
}

// Preview returns up to max lines from the start of the file.
func (s *Session) Preview(max int) []string {
	lines := s.store.Lines()
	if max > 0 && len(lines) > max {
		lines = lines[:max]
	}
	return lines
}

func (s *Session) idle() bool {
	return s.state != Editing
}

// Select chooses the line to edit. An out of range line leaves the
// session unchanged.
func (s *Session) Select(n int) error {
	if s.state == Editing {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	line, err := s.store.Line(n)
	if err != nil {
		return err
	}
	s.state = Selecting
	s.selected = n
	s.original = line
	s.candidate = line
	return nil
}

// Begin starts editing the selected line.
func (s *Session) Begin() error {
	if s.state != Selecting {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	s.state = Editing
	return nil
}

func (s *Session) edit(apply func(line string) string) error {
	if s.state != Editing {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	s.candidate = apply(s.candidate)
	return nil
}

// SetOption sets any option on the candidate line. Quoting follows the
// usual convention for the option.
func (s *Session) SetOption(key string, value string) error {
	return s.edit(func(line string) string {
		return ruleparser.SetOption(line, key, value, ruleparser.QuotedOption(key))
	})
}

func (s *Session) SetMsg(msg string) error {
	return s.edit(func(line string) string {
		return ruleparser.SetOption(line, "msg", msg, true)
	})
}

func (s *Session) SetContent(content string) error {
	return s.edit(func(line string) string {
		return ruleparser.SetContent(line, content)
	})
}

func (s *Session) SetClasstype(classtype string) error {
	return s.edit(func(line string) string {
		return ruleparser.SetOption(line, "classtype", classtype, false)
	})
}

func (s *Session) SetSid(sid string) error {
	return s.edit(func(line string) string {
		return ruleparser.SetOption(line, "sid", sid, false)
	})
}

// ReplaceLine replaces the whole candidate line.
func (s *Session) ReplaceLine(text string) error {
	return s.edit(func(string) string {
		return text
	})
}

// SidConflict returns where a sid is already in use by a rule other than
// the one being edited.
func (s *Session) SidConflict(sid string) *rules.Location {
	value, err := strconv.ParseUint(strings.TrimSpace(sid), 10, 64)
	if err != nil {
		return nil
	}
	location := s.ruleMap.FindBySid(value)
	if location == nil {
		return nil
	}
	if location.Filename == s.store.Path() && location.Line == s.selected {
		return nil
	}
	return location
}

// Diff returns a unified diff between the selected line and the candidate.
func (s *Session) Diff() string {
	return util.LineDiff(fmt.Sprintf("line %d", s.selected), s.original, s.candidate)
}

// Confirm writes the candidate into the file.
func (s *Session) Confirm() error {
	if s.state != Editing {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	if err := s.store.Replace(s.selected, s.candidate); err != nil {
		return err
	}
	if err := s.store.Save(); err != nil {
		s.store.Replace(s.selected, s.original)
		return err
	}
	log.Info("Line %d updated.", s.selected)
	s.state = Saved
	return nil
}

// Discard drops the candidate without touching the file.
func (s *Session) Discard() error {
	if s.state != Editing && s.state != Selecting {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	s.candidate = s.original
	s.state = Discarded
	return nil
}

// Append adds a rule to the end of the file.
func (s *Session) Append(text string) error {
	if !s.idle() {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyLine
	}
	if err := s.store.AppendLine(text); err != nil {
		return err
	}
	log.Info("Rule appended.")
	s.state = Viewing
	return nil
}

// InsertBefore inserts a rule so that it becomes line n.
func (s *Session) InsertBefore(n int, text string) error {
	if !s.idle() {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	if err := s.store.InsertBefore(n, text); err != nil {
		return err
	}
	if err := s.store.Save(); err != nil {
		s.store.Delete(n)
		return err
	}
	log.Info("Rule inserted at line %d.", n)
	s.state = Viewing
	return nil
}

// Delete removes line n from the file.
func (s *Session) Delete(n int) error {
	if !s.idle() {
		return errors.Wrap(ErrInvalidState, s.state.String())
	}
	line, err := s.store.Line(n)
	if err != nil {
		return err
	}
	if err := s.store.Delete(n); err != nil {
		return err
	}
	if err := s.store.Save(); err != nil {
		s.store.InsertBefore(n, line)
		return err
	}
	log.Info("Line %d deleted.", n)
	s.state = Viewing
	return nil
}
