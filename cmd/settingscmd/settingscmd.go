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

// Package settingscmd implements the settings and run commands.
package settingscmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jasonish/ruletool/cmd/common"
	"github.com/jasonish/ruletool/launcher"
	"github.com/jasonish/ruletool/log"
	"github.com/jasonish/ruletool/settings"
	"github.com/jasonish/ruletool/util"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Apply sets each key=value assignment on s.
func Apply(s *settings.Settings, assignments []string) error {
	for _, assignment := range assignments {
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 {
			return errors.Errorf("expected key=value, got %q", assignment)
		}
		if err := s.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])); err != nil {
			return err
		}
	}
	return nil
}

// Update applies assignments and saves the settings if anything was given,
// then prints them.
func Update(fs afero.Fs, filename string, s settings.Settings, assignments []string, out io.Writer) error {
	if len(assignments) > 0 {
		if err := Apply(&s, assignments); err != nil {
			return err
		}
		if err := settings.Save(fs, filename, s); err != nil {
			return err
		}
		log.Info("Settings saved to %s", filename)
	}
	fmt.Fprint(out, util.ToJsonPretty(s))
	return nil
}

func SettingsMain(args []string) {
	var assignments []string

	flagset := common.NewFlagSet("ruletool settings")
	flagset.StringArrayVar(&assignments, "set", nil,
		fmt.Sprintf("Set key=value (keys: %s)", strings.Join(settings.Keys(), ", ")))
	common.ParseFlags(flagset, args)

	fs := afero.NewOsFs()
	s, err := common.LoadSettings(fs)
	if err != nil {
		common.Fatal("%v", err)
	}
	if err := Update(fs, common.SettingsFilename(), s, assignments, os.Stdout); err != nil {
		common.Fatal("%v", err)
	}
}

func RunMain(args []string) {
	var iface string
	var wait bool

	flagset := common.NewFlagSet("ruletool run")
	flagset.StringVarP(&iface, "interface", "i", "", "Interface to use instead of the configured one")
	flagset.BoolVar(&wait, "wait", false, "Wait for Suricata to exit")
	common.ParseFlags(flagset, args)

	s, err := common.LoadSettings(afero.NewOsFs())
	if err != nil {
		common.Fatal("%v", err)
	}
	if iface != "" {
		s.Interface = iface
	}

	cmd, err := launcher.Start(s)
	if err != nil {
		if err == launcher.ErrNoInterface {
			common.Fatal("network interface not set, use --interface or the settings command")
		}
		common.Fatal("%v", err)
	}
	if wait {
		if err := cmd.Wait(); err != nil {
			common.Fatal("suricata exited: %v", err)
		}
	}
}
