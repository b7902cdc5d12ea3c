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

// Package edit is the interactive ruletool command.
package edit

import (
	"strconv"

	"github.com/jasonish/ruletool/cmd/common"
	"github.com/jasonish/ruletool/launcher"
	"github.com/jasonish/ruletool/rules"
	"github.com/jasonish/ruletool/rulestore"
	"github.com/jasonish/ruletool/session"
	"github.com/jasonish/ruletool/settings"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Number of lines shown when a file is opened.
const previewLines = 20

// Overridable for tests.
var startSuricata = launcher.Start

// Editor drives the interactive configuration and rule editing flow.
type Editor struct {
	prompter         *common.Prompter
	fs               afero.Fs
	settingsFilename string
	settings         settings.Settings
}

func NewEditor(prompter *common.Prompter, fs afero.Fs, filename string, s settings.Settings) *Editor {
	return &Editor{
		prompter:         prompter,
		fs:               fs,
		settingsFilename: filename,
		settings:         s,
	}
}

func (e *Editor) Settings() settings.Settings {
	return e.settings
}

func (e *Editor) saveSettings() error {
	if err := settings.Save(e.fs, e.settingsFilename, e.settings); err != nil {
		return err
	}
	e.prompter.Println("Settings saved successfully!")
	return nil
}

func (e *Editor) confirm(prompt string) bool {
	yes, err := e.prompter.Confirm(prompt)
	return err == nil && yes
}

// Run walks through the settings, rule editing, interface and launch
// steps in turn.
func (e *Editor) Run() error {
	pathPrompts := []struct {
		key    string
		prompt string
	}{
		{"downloaded_rules_path", "Enter path where ET/protocol rules are downloaded (or leave blank)"},
		{"suricata_path", "Suricata path (or leave blank)"},
		{"config_path", "Config path (or leave blank)"},
		{"rules_folder", "Rules folder (or leave blank)"},
	}
	for _, p := range pathPrompts {
		value, err := e.prompter.ReadString(p.prompt)
		if err != nil {
			return err
		}
		if value != "" {
			e.settings.Set(p.key, value)
		}
	}
	if err := e.saveSettings(); err != nil {
		return err
	}

	e.prompter.Println("")
	if e.confirm("Edit rules?") {
		if err := e.SelectRuleFile(); err != nil && !common.IsEOF(err) {
			return err
		}
	}

	e.prompter.Println("")
	if e.confirm("Update network interface?") {
		if err := e.UpdateInterface(); err != nil && !common.IsEOF(err) {
			return err
		}
	}

	e.prompter.Println("")
	if e.confirm("Do you want to start Suricata now?") {
		e.RunSuricata()
	}

	e.prompter.Println("\nConfiguration complete!")
	return nil
}

// SelectRuleFile asks for a catalog and file, then edits it.
func (e *Editor) SelectRuleFile() error {
	if _, err := rules.EnsureCustom(e.fs, e.settings.RulesFolder); err != nil {
		return err
	}

	e.prompter.Println("\nWhich rules do you want to edit?")
	e.prompter.Println("1. ET rules")
	e.prompter.Println("2. %s", rules.CustomRules)
	choice, err := e.prompter.ReadString("Enter 1 or 2")
	if err != nil {
		return err
	}
	files, err := rules.Catalog(choice)
	if err != nil {
		e.prompter.Println("Invalid choice")
		return nil
	}

	e.prompter.Println("\nAvailable files:")
	for i, file := range files {
		e.prompter.Println("%d. %s", i+1, file)
	}
	input, err := e.prompter.ReadString("Enter file number to edit")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(files) {
		e.prompter.Println("Invalid choice")
		return nil
	}

	return e.EditFile(rules.Path(e.settings.RulesFolder, files[n-1]))
}

func (e *Editor) ruleMap() *rules.RuleMap {
	paths := []string{e.settings.RulesFolder}
	if e.settings.DownloadedRulesPath != "" {
		if exists, _ := afero.DirExists(e.fs, e.settings.DownloadedRulesPath); exists {
			paths = append(paths, e.settings.DownloadedRulesPath)
		}
	}
	return rules.NewRuleMap(e.fs, paths)
}

// EditFile runs the line menu on one rule file until the user is done.
func (e *Editor) EditFile(filename string) error {
	store, err := rulestore.Open(e.fs, filename)
	if err != nil {
		return err
	}
	s := session.New(store)
	s.SetRuleMap(e.ruleMap())

	e.prompter.Println("\n--- Current Rules (first %d lines) ---", previewLines)
	for i, line := range s.Preview(previewLines) {
		e.prompter.Println("%s: %s", common.Green(i+1), line)
	}

	for {
		choice, err := e.prompter.ReadString("\nEdit, append, insert or delete a line? (edit/append/insert/delete/skip)")
		if err != nil {
			return err
		}
		switch choice {
		case "edit":
			err = e.editLine(s)
		case "append":
			err = e.appendLine(s)
		case "insert":
			err = e.insertLine(s)
		case "delete":
			err = e.deleteLine(s)
		case "", "skip", "done":
			return nil
		default:
			e.prompter.Println("Invalid choice")
		}
		if err != nil {
			if common.IsEOF(err) {
				return err
			}
			e.prompter.Println("Error: %v", err)
		}
	}
}

func (e *Editor) readLineNumber(prompt string) (int, error) {
	input, err := e.prompter.ReadString(prompt)
	if err != nil {
		return 0, err
	}
	return session.ParseLineNumber(input)
}

func (e *Editor) editLine(s *session.Session) error {
	n, err := e.readLineNumber("Line number to edit")
	if err != nil {
		return err
	}
	if err := s.Select(n); err != nil {
		return err
	}
	if err := s.Begin(); err != nil {
		return err
	}
	e.prompter.Println("Current: %s", s.Candidate())

	for done := false; !done; {
		field, err := e.prompter.ReadString("Change which part? (msg/content/classtype/sid/option/line/done)")
		if err != nil {
			s.Discard()
			return err
		}
		switch field {
		case "msg":
			err = e.readAndApply(s, "New message", s.SetMsg)
		case "content":
			err = e.readAndApply(s, "New content", s.SetContent)
		case "classtype":
			err = e.readAndApply(s, "New classtype", s.SetClasstype)
		case "sid":
			err = e.readAndApply(s, "New sid", func(sid string) error {
				if location := s.SidConflict(sid); location != nil {
					e.prompter.Println("Warning: sid %s is already used at %s:%d",
						sid, location.Filename, location.Line)
				}
				return s.SetSid(sid)
			})
		case "option":
			var key string
			key, err = e.prompter.ReadString("Option name")
			if err == nil && key != "" {
				err = e.readAndApply(s, "New value", func(value string) error {
					return s.SetOption(key, value)
				})
			}
		case "line":
			var text string
			text, err = e.prompter.ReadRaw("New text")
			if err == nil {
				err = s.ReplaceLine(text)
			}
		case "", "done":
			done = true
		default:
			e.prompter.Println("Invalid choice")
		}
		if err != nil {
			s.Discard()
			return err
		}
		if !done {
			e.prompter.Println("Current: %s", s.Candidate())
		}
	}

	diff := s.Diff()
	if diff == "" {
		e.prompter.Println("No changes.")
		return s.Discard()
	}
	e.prompter.Printf("%s", diff)
	if !e.confirm("Save changes?") {
		e.prompter.Println("Changes discarded.")
		return s.Discard()
	}
	if err := s.Confirm(); err != nil {
		s.Discard()
		return err
	}
	e.prompter.Println("Line updated!")
	return nil
}

func (e *Editor) readAndApply(s *session.Session, prompt string, apply func(string) error) error {
	value, err := e.prompter.ReadString(prompt)
	if err != nil {
		return err
	}
	return apply(value)
}

func (e *Editor) appendLine(s *session.Session) error {
	text, err := e.prompter.ReadString("Enter new rule")
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if !e.confirm("Append this rule?") {
		return nil
	}
	if err := s.Append(text); err != nil {
		return err
	}
	e.prompter.Println("Rule appended!")
	return nil
}

func (e *Editor) insertLine(s *session.Session) error {
	n, err := e.readLineNumber("Insert before line number")
	if err != nil {
		return err
	}
	if n < 1 || n > s.Store().Len()+1 {
		return errors.Wrapf(rulestore.ErrOutOfRange, "line %d of %d", n, s.Store().Len())
	}
	text, err := e.prompter.ReadString("Enter new rule")
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if !e.confirm("Insert this rule?") {
		return nil
	}
	if err := s.InsertBefore(n, text); err != nil {
		return err
	}
	e.prompter.Println("Rule inserted!")
	return nil
}

func (e *Editor) deleteLine(s *session.Session) error {
	n, err := e.readLineNumber("Line number to delete")
	if err != nil {
		return err
	}
	line, err := s.Store().Line(n)
	if err != nil {
		return err
	}
	e.prompter.Println("%d: %s", n, line)
	if !e.confirm("Delete this line?") {
		return nil
	}
	if err := s.Delete(n); err != nil {
		return err
	}
	e.prompter.Println("Line deleted!")
	return nil
}

// UpdateInterface changes the capture interface, offering to put the old
// one back afterwards.
func (e *Editor) UpdateInterface() error {
	original := e.settings.Interface
	e.prompter.Println("Current network interface: %s", original)
	iface, err := e.prompter.ReadString("Enter new interface (or leave blank)")
	if err != nil {
		return err
	}
	if iface == "" {
		return nil
	}
	e.settings.Interface = iface
	if err := e.saveSettings(); err != nil {
		return err
	}
	e.prompter.Println("Interface updated!")

	if e.confirm("Do you want to restore original interface?") {
		e.settings.Interface = original
		if err := e.saveSettings(); err != nil {
			return err
		}
		e.prompter.Println("Interface restored to original!")
	}
	return nil
}

// RunSuricata starts Suricata unless no interface is configured.
func (e *Editor) RunSuricata() {
	_, err := startSuricata(e.settings)
	if err != nil {
		if err == launcher.ErrNoInterface {
			e.prompter.Println("Network interface not set. Skipping Suricata start.")
			return
		}
		e.prompter.Println("Error starting Suricata: %v", err)
		return
	}
	e.prompter.Println("Suricata started successfully.")
}

func Main(args []string) {
	flagset := common.NewFlagSet("ruletool edit")
	common.ParseFlags(flagset, args)

	fs := afero.NewOsFs()
	s, err := common.LoadSettings(fs)
	if err != nil {
		common.Fatal("%v", err)
	}

	editor := NewEditor(common.NewConsolePrompter(), fs, common.SettingsFilename(), s)
	if err := editor.Run(); err != nil && !common.IsEOF(err) {
		common.Fatal("%v", err)
	}
}
