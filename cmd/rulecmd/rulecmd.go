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

// Package rulecmd implements the non-interactive rule file commands.
package rulecmd

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/jasonish/ruletool/cmd/common"
	"github.com/jasonish/ruletool/ruleparser"
	"github.com/jasonish/ruletool/rules"
	"github.com/jasonish/ruletool/rulestore"
	"github.com/jasonish/ruletool/session"
	"github.com/jasonish/ruletool/settings"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

var ErrNoFile = errors.New("no rule file given, use --file")

// Options shared by the rule commands.
type Options struct {
	File     string
	Line     int
	Key      string
	Value    string
	Text     string
	Quoted   bool
	Unquoted bool
	Yes      bool
	Max      int
	Dump     bool
}

// Env is what a command runs against.
type Env struct {
	Fs       afero.Fs
	Settings settings.Settings
	Prompter *common.Prompter
	Out      io.Writer
}

func (env *Env) open(opts *Options) (*session.Session, error) {
	if opts.File == "" {
		return nil, ErrNoFile
	}
	store, err := rulestore.Open(env.Fs, rules.Path(env.Settings.RulesFolder, opts.File))
	if err != nil {
		return nil, err
	}
	return session.New(store), nil
}

// openExisting is open for commands that only read; a missing file is an
// error rather than being created.
func (env *Env) openExisting(opts *Options) (*session.Session, error) {
	if opts.File == "" {
		return nil, ErrNoFile
	}
	store, err := rulestore.OpenExisting(env.Fs, rules.Path(env.Settings.RulesFolder, opts.File))
	if err != nil {
		return nil, err
	}
	return session.New(store), nil
}

func (env *Env) confirm(opts *Options, prompt string) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	return env.Prompter.Confirm(prompt)
}

// Show prints the lines of a rule file with their sid and message.
func Show(env *Env, opts *Options) error {
	s, err := env.openExisting(opts)
	if err != nil {
		return err
	}
	for i, line := range s.Preview(opts.Max) {
		n := common.Green(fmt.Sprintf("%4d", i+1))
		if !ruleparser.IsRuleLine(line) {
			fmt.Fprintf(env.Out, "%s: %s\n", n, line)
			continue
		}
		rule, err := ruleparser.Parse(line)
		if err != nil {
			fmt.Fprintf(env.Out, "%s: [unparsed: %v] %s\n", n, err, line)
			continue
		}
		if opts.Dump {
			fmt.Fprintf(env.Out, "%s: %s", n, spew.Sdump(rule))
			continue
		}
		state := ""
		if !rule.Enabled {
			state = " (disabled)"
		}
		fmt.Fprintf(env.Out, "%s: %s %s%s\n", n, common.Blue(rule.Sid), rule.Msg, state)
	}
	return nil
}

// Set rewrites one option of one line.
func Set(env *Env, opts *Options) error {
	key := ruleparser.NormalizeKey(opts.Key)
	if key == "" {
		return errors.New("no option given, use --key")
	}
	s, err := env.open(opts)
	if err != nil {
		return err
	}
	if err := s.Select(opts.Line); err != nil {
		return err
	}
	if err := s.Begin(); err != nil {
		return err
	}

	switch {
	case key == "content" && !opts.Unquoted:
		err = s.SetContent(opts.Value)
	case opts.Quoted || opts.Unquoted:
		err = s.ReplaceLine(ruleparser.SetOption(s.Candidate(), key, opts.Value, opts.Quoted))
	default:
		err = s.SetOption(key, opts.Value)
	}
	if err != nil {
		return err
	}

	diff := s.Diff()
	if diff == "" {
		fmt.Fprintln(env.Out, "No changes.")
		return s.Discard()
	}
	fmt.Fprint(env.Out, diff)
	ok, err := env.confirm(opts, "Save changes?")
	if err != nil || !ok {
		s.Discard()
		return err
	}
	return s.Confirm()
}

// Insert adds a line before the given position.
func Insert(env *Env, opts *Options) error {
	s, err := env.open(opts)
	if err != nil {
		return err
	}
	if opts.Line < 1 || opts.Line > s.Store().Len()+1 {
		return errors.Wrapf(rulestore.ErrOutOfRange, "line %d of %d", opts.Line, s.Store().Len())
	}
	ok, err := env.confirm(opts, fmt.Sprintf("Insert before line %d?", opts.Line))
	if err != nil || !ok {
		return err
	}
	return s.InsertBefore(opts.Line, opts.Text)
}

// Delete removes the line at the given position.
func Delete(env *Env, opts *Options) error {
	s, err := env.open(opts)
	if err != nil {
		return err
	}
	line, err := s.Store().Line(opts.Line)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%d: %s\n", opts.Line, line)
	ok, err := env.confirm(opts, "Delete this line?")
	if err != nil || !ok {
		return err
	}
	return s.Delete(opts.Line)
}

// Append adds a line to the end of the file.
func Append(env *Env, opts *Options) error {
	s, err := env.open(opts)
	if err != nil {
		return err
	}
	ok, err := env.confirm(opts, "Append this rule?")
	if err != nil || !ok {
		return err
	}
	return s.Append(opts.Text)
}

// Check reports problems in a rule file. It returns the number found.
func Check(env *Env, opts *Options) (int, error) {
	s, err := env.openExisting(opts)
	if err != nil {
		return 0, err
	}
	problems := rules.Check(s.Store().Lines())
	for _, problem := range problems {
		fmt.Fprintf(env.Out, "%s: %s\n", s.Store().Path(), problem)
	}
	return len(problems), nil
}

func newFlagSet(name string, opts *Options) *pflag.FlagSet {
	flagset := common.NewFlagSet("ruletool " + name)
	flagset.StringVarP(&opts.File, "file", "f", "", "Rule file, relative to the rules folder")
	return flagset
}

func setup() *Env {
	fs := afero.NewOsFs()
	s, err := common.LoadSettings(fs)
	if err != nil {
		common.Fatal("%v", err)
	}
	return &Env{
		Fs:       fs,
		Settings: s,
		Prompter: common.NewConsolePrompter(),
		Out:      os.Stdout,
	}
}

// --line is taken as a string so that parseLine can report bad input as an
// invalid line number rather than a flag error.
func lineFlag(flagset *pflag.FlagSet) {
	flagset.StringP("line", "l", "", "Line number (1-based)")
}

func parseLine(flagset *pflag.FlagSet, opts *Options) {
	value, _ := flagset.GetString("line")
	n, err := session.ParseLineNumber(value)
	if err != nil {
		common.Fatal("%v", err)
	}
	opts.Line = n
}

func ShowMain(args []string) {
	opts := &Options{}
	flagset := newFlagSet("show", opts)
	flagset.IntVarP(&opts.Max, "max", "n", 0, "Maximum number of lines to show")
	flagset.BoolVar(&opts.Dump, "dump", false, "Dump parsed rules")
	common.ParseFlags(flagset, args)
	if err := Show(setup(), opts); err != nil {
		common.Fatal("%v", err)
	}
}

func SetMain(args []string) {
	opts := &Options{}
	flagset := newFlagSet("set", opts)
	lineFlag(flagset)
	flagset.StringVarP(&opts.Key, "key", "k", "", "Option name, eg. msg, sid, classtype")
	flagset.StringVar(&opts.Value, "value", "", "New option value")
	flagset.BoolVar(&opts.Quoted, "quoted", false, "Quote the value")
	flagset.BoolVar(&opts.Unquoted, "unquoted", false, "Do not quote the value")
	flagset.BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	common.ParseFlags(flagset, args)
	parseLine(flagset, opts)
	if err := Set(setup(), opts); err != nil {
		common.Fatal("%v", err)
	}
}

func InsertMain(args []string) {
	opts := &Options{}
	flagset := newFlagSet("insert", opts)
	lineFlag(flagset)
	flagset.StringVarP(&opts.Text, "text", "t", "", "Rule text")
	flagset.BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	common.ParseFlags(flagset, args)
	parseLine(flagset, opts)
	if err := Insert(setup(), opts); err != nil {
		common.Fatal("%v", err)
	}
}

func DeleteMain(args []string) {
	opts := &Options{}
	flagset := newFlagSet("delete", opts)
	lineFlag(flagset)
	flagset.BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	common.ParseFlags(flagset, args)
	parseLine(flagset, opts)
	if err := Delete(setup(), opts); err != nil {
		common.Fatal("%v", err)
	}
}

func AppendMain(args []string) {
	opts := &Options{}
	flagset := newFlagSet("append", opts)
	flagset.StringVarP(&opts.Text, "text", "t", "", "Rule text")
	flagset.BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")
	common.ParseFlags(flagset, args)
	if err := Append(setup(), opts); err != nil {
		common.Fatal("%v", err)
	}
}

func CheckMain(args []string) {
	opts := &Options{}
	flagset := newFlagSet("check", opts)
	common.ParseFlags(flagset, args)
	count, err := Check(setup(), opts)
	if err != nil {
		common.Fatal("%v", err)
	}
	if count > 0 {
		os.Exit(1)
	}
}
