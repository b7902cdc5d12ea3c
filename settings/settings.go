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

// Package settings holds the tool's persisted settings.
package settings

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jasonish/ruletool/log"
	"github.com/jasonish/ruletool/util"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	DefaultFilename            = "settings.json"
	DefaultConfigPath          = "/etc/suricata/suricata.yaml"
	DefaultDownloadedRulesPath = "/etc/suricata/rules"
	DefaultSuricataPath        = "/usr/bin/suricata"

	// Prefix of the environment variables that override settings, for
	// example RULETOOL_INTERFACE.
	EnvPrefix = "RULETOOL"
)

var ErrUnknownKey = errors.New("unknown settings key")

// Overridable for tests.
var lookPath = exec.LookPath

type Settings struct {
	SuricataPath        string `json:"suricata_path" yaml:"suricata_path" mapstructure:"suricata_path"`
	ConfigPath          string `json:"config_path" yaml:"config_path" mapstructure:"config_path"`
	RulesFolder         string `json:"rules_folder" yaml:"rules_folder" mapstructure:"rules_folder"`
	Interface           string `json:"interface" yaml:"interface" mapstructure:"interface"`
	DownloadedRulesPath string `json:"downloaded_rules_path" yaml:"downloaded_rules_path" mapstructure:"downloaded_rules_path"`

	// Extra Suricata command line arguments, shell quoted.
	SuricataArgs string `json:"suricata_args,omitempty" yaml:"suricata_args,omitempty" mapstructure:"suricata_args"`
}

// Keys returns the settings keys in display order.
func Keys() []string {
	return []string{
		"suricata_path",
		"config_path",
		"rules_folder",
		"interface",
		"downloaded_rules_path",
		"suricata_args",
	}
}

// Defaults returns the default settings. The rules folder defaults to a
// "rules" directory next to the settings file.
func Defaults(baseDir string) Settings {
	suricataPath, err := lookPath("suricata")
	if err != nil || suricataPath == "" {
		suricataPath = DefaultSuricataPath
	}
	return Settings{
		SuricataPath:        suricataPath,
		ConfigPath:          DefaultConfigPath,
		RulesFolder:         filepath.Join(baseDir, "rules"),
		DownloadedRulesPath: DefaultDownloadedRulesPath,
	}
}

// Get returns the value of a setting by key.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "suricata_path":
		return s.SuricataPath, nil
	case "config_path":
		return s.ConfigPath, nil
	case "rules_folder":
		return s.RulesFolder, nil
	case "interface":
		return s.Interface, nil
	case "downloaded_rules_path":
		return s.DownloadedRulesPath, nil
	case "suricata_args":
		return s.SuricataArgs, nil
	}
	return "", errors.Wrap(ErrUnknownKey, key)
}

// Set changes a setting by key.
func (s *Settings) Set(key string, value string) error {
	switch key {
	case "suricata_path":
		s.SuricataPath = value
	case "config_path":
		s.ConfigPath = value
	case "rules_folder":
		s.RulesFolder = value
	case "interface":
		s.Interface = value
	case "downloaded_rules_path":
		s.DownloadedRulesPath = value
	case "suricata_args":
		s.SuricataArgs = value
	default:
		return errors.Wrap(ErrUnknownKey, key)
	}
	return nil
}

func isYaml(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads settings from filename. If the file does not exist it is
// created with default values. Environment variables prefixed with
// RULETOOL_ override values from the file.
func Load(fs afero.Fs, filename string) (Settings, error) {
	baseDir := filepath.Dir(filename)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	defaults := Defaults(baseDir)

	exists, err := afero.Exists(fs, filename)
	if err != nil {
		return Settings{}, errors.Wrapf(err, "failed to stat %s", filename)
	}
	if !exists {
		if err := Save(fs, filename, defaults); err != nil {
			return Settings{}, err
		}
		log.Info("Default %s created. You can update paths via the tool.", filename)
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(filename)
	if isYaml(filename) {
		v.SetConfigType("yaml")
	} else {
		v.SetConfigType("json")
	}
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range Keys() {
		value, _ := defaults.Get(key)
		v.SetDefault(key, value)
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, errors.Wrapf(err, "failed to read %s", filename)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, errors.Wrapf(err, "failed to decode %s", filename)
	}

	return settings, nil
}

// Save writes settings to filename, as YAML if the name ends in .yaml or
// .yml, otherwise as indented JSON.
func Save(fs afero.Fs, filename string, settings Settings) error {
	var buf []byte
	var err error
	if isYaml(filename) {
		buf, err = yaml.Marshal(&settings)
	} else {
		buf, err = util.MarshalPretty(&settings)
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := afero.WriteFile(fs, filename, buf, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", filename)
	}
	log.Debug("Settings saved to %s", filename)
	return nil
}
