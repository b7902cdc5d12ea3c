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

// Package common holds what the ruletool sub-commands share: global flags,
// settings loading and console prompting.
package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jasonish/ruletool/log"
	"github.com/jasonish/ruletool/settings"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("settings", settings.DefaultFilename)
	viper.BindEnv("settings", "RULETOOL_SETTINGS")
}

// NewFlagSet returns a flag set with the global options already added.
func NewFlagSet(name string) *pflag.FlagSet {
	flagset := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagset.StringP("settings", "s", "", "Settings file (default: ./settings.json)")
	flagset.BoolP("verbose", "v", false, "Be more verbose")
	return flagset
}

// ParseFlags parses args and applies the global options. The process exits
// on a parse error or when help was requested.
func ParseFlags(flagset *pflag.FlagSet, args []string) {
	if err := flagset.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if flag := flagset.Lookup("settings"); flag != nil && flag.Changed {
		viper.BindPFlag("settings", flag)
	}
	viper.BindPFlag("verbose", flagset.Lookup("verbose"))

	if viper.GetBool("verbose") {
		log.SetLevel(log.DEBUG)
	}
}

// SettingsFilename returns the settings file selected by flag, environment
// or default.
func SettingsFilename() string {
	return viper.GetString("settings")
}

// LoadSettings loads the settings file, creating it if needed.
func LoadSettings(fs afero.Fs) (settings.Settings, error) {
	filename := SettingsFilename()
	log.Debug("Using settings file %s", filename)
	return settings.Load(fs, filename)
}

// Fatal prints an error and exits.
func Fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// Colorize is true when standard output is a terminal.
var Colorize = isatty.IsTerminal(os.Stdout.Fd())

const (
	green = "\x1b[32m"
	blue  = "\x1b[34m"
	reset = "\x1b[0m"
)

func paint(color string, v interface{}) string {
	if !Colorize {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%s%v%s", color, v, reset)
}

func Green(v interface{}) string {
	return paint(green, v)
}

func Blue(v interface{}) string {
	return paint(blue, v)
}

// Prompter reads answers to questions from an input stream.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// NewConsolePrompter prompts on standard output and reads standard input.
func NewConsolePrompter() *Prompter {
	return NewPrompter(os.Stdin, os.Stdout)
}

func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) Println(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
	fmt.Fprintf(p.out, "\n")
}

// ReadString prints a prompt and returns the trimmed response. io.EOF is
// only returned when the input ends before anything was entered.
func (p *Prompter) ReadString(prompt string) (string, error) {
	response, err := p.ReadRaw(prompt)
	return strings.TrimSpace(response), err
}

// ReadRaw is like ReadString but only removes the line ending.
func (p *Prompter) ReadRaw(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	response, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && response != "" {
			err = nil
		} else {
			return "", errors.Wrap(err, "read error")
		}
	}
	response = strings.TrimSuffix(response, "\n")
	return strings.TrimSuffix(response, "\r"), nil
}

// Confirm asks a yes/no question. Only "yes" or "y" count as yes.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	response, err := p.ReadString(prompt + " (yes/no)")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(response) {
	case "yes", "y":
		return true, nil
	}
	return false, nil
}

// IsEOF returns true if err was caused by the end of input.
func IsEOF(err error) bool {
	return errors.Cause(err) == io.EOF
}
