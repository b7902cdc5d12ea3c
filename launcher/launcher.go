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

// Package launcher starts Suricata with the configured rules.
package launcher

import (
	"os"
	"os/exec"

	"github.com/jasonish/ruletool/log"
	"github.com/jasonish/ruletool/settings"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

var ErrNoInterface = errors.New("network interface not set")

// Args returns the Suricata command line, program first.
func Args(s settings.Settings) ([]string, error) {
	if s.Interface == "" {
		return nil, ErrNoInterface
	}
	args := []string{s.SuricataPath, "-c", s.ConfigPath, "-i", s.Interface}
	if s.SuricataArgs != "" {
		extra, err := shellquote.Split(s.SuricataArgs)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid suricata_args %q", s.SuricataArgs)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// Command builds, but does not start, the Suricata process.
func Command(s settings.Settings) (*exec.Cmd, error) {
	args, err := Args(s)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// Start launches Suricata and returns without waiting for it to exit.
func Start(s settings.Settings) (*exec.Cmd, error) {
	cmd, err := Command(s)
	if err != nil {
		return nil, err
	}
	log.Info("Starting Suricata on interface %s...", s.Interface)
	log.Debug("Running %s", shellquote.Join(cmd.Args...))
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", cmd.Path)
	}
	log.Info("Suricata started with pid %d.", cmd.Process.Pid)
	return cmd, nil
}
