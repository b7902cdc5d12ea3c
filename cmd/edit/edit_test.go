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

package edit

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/jasonish/ruletool/cmd/common"
	"github.com/jasonish/ruletool/launcher"
	"github.com/jasonish/ruletool/settings"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customRules = `alert tcp any any -> any any (msg:"one"; sid:1;)
alert tcp any any -> any any (msg:"two"; sid:2;)
alert tcp any any -> any any (msg:"three"; sid:3;)
`

func init() {
	common.Colorize = false
}

func newEditor(t *testing.T, input ...string) (*Editor, afero.Fs, *bytes.Buffer) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/rules/custom.rules", []byte(customRules), 0644))
	out := &bytes.Buffer{}
	prompter := common.NewPrompter(strings.NewReader(strings.Join(input, "\n")+"\n"), out)
	s := settings.Settings{
		SuricataPath: "/usr/bin/suricata",
		ConfigPath:   "/etc/suricata/suricata.yaml",
		RulesFolder:  "/rules",
	}
	return NewEditor(prompter, fs, "/settings.json", s), fs, out
}

func readFile(t *testing.T, fs afero.Fs, filename string) string {
	buf, err := afero.ReadFile(fs, filename)
	require.NoError(t, err)
	return string(buf)
}

func TestEditLine(t *testing.T) {
	editor, fs, out := newEditor(t,
		"edit", "2",
		"msg", "changed",
		"classtype", "trojan-activity",
		"done",
		"yes",
		"skip")
	require.NoError(t, editor.EditFile("/rules/custom.rules"))

	assert.Equal(t, `alert tcp any any -> any any (msg:"one"; sid:1;)
alert tcp any any -> any any (msg:"changed"; sid:2; classtype:trojan-activity;)
alert tcp any any -> any any (msg:"three"; sid:3;)
`, readFile(t, fs, "/rules/custom.rules"))
	assert.Contains(t, out.String(), "Line updated!")
	assert.Contains(t, out.String(), "--- Current Rules (first 20 lines) ---")
}

func TestEditLineDeclined(t *testing.T) {
	editor, fs, out := newEditor(t,
		"edit", "1",
		"line", "replaced entirely",
		"done",
		"no",
		"skip")
	require.NoError(t, editor.EditFile("/rules/custom.rules"))
	assert.Equal(t, customRules, readFile(t, fs, "/rules/custom.rules"))
	assert.Contains(t, out.String(), "Changes discarded.")
}

func TestEditLineBadNumber(t *testing.T) {
	editor, fs, out := newEditor(t,
		"edit", "two",
		"edit", "9",
		"skip")
	require.NoError(t, editor.EditFile("/rules/custom.rules"))
	assert.Equal(t, customRules, readFile(t, fs, "/rules/custom.rules"))
	assert.Contains(t, out.String(), "invalid line number")
	assert.Contains(t, out.String(), "out of range")
}

func TestEditSidConflictWarning(t *testing.T) {
	editor, fs, out := newEditor(t,
		"edit", "2",
		"sid", "3",
		"done",
		"yes",
		"skip")
	require.NoError(t, editor.EditFile("/rules/custom.rules"))
	assert.Contains(t, out.String(), "Warning: sid 3 is already used at /rules/custom.rules:3")
	assert.Contains(t, readFile(t, fs, "/rules/custom.rules"), `(msg:"two"; sid:3;)`)
}

func TestAppendInsertDelete(t *testing.T) {
	editor, fs, _ := newEditor(t,
		"append", `alert ip any any -> any any (msg:"four"; sid:4;)`, "yes",
		"insert", "1", `alert ip any any -> any any (msg:"zero"; sid:5;)`, "yes",
		"delete", "3", "yes",
		"delete", "10",
		"skip")
	require.NoError(t, editor.EditFile("/rules/custom.rules"))
	assert.Equal(t, `alert ip any any -> any any (msg:"zero"; sid:5;)
alert tcp any any -> any any (msg:"one"; sid:1;)
alert tcp any any -> any any (msg:"three"; sid:3;)
alert ip any any -> any any (msg:"four"; sid:4;)
`, readFile(t, fs, "/rules/custom.rules"))
}

func TestEditMissingFileIsCreated(t *testing.T) {
	editor, fs, _ := newEditor(t, "insert", "1", "first rule", "yes", "skip")
	require.NoError(t, editor.EditFile("/rules/emerging-dns.rules"))
	assert.Equal(t, "first rule\n", readFile(t, fs, "/rules/emerging-dns.rules"))
}

func TestSelectRuleFile(t *testing.T) {
	editor, fs, out := newEditor(t, "1", "8", "append", "dns rule", "yes", "skip")
	require.NoError(t, editor.SelectRuleFile())
	assert.Contains(t, out.String(), "8. emerging-dns.rules")
	assert.Equal(t, "dns rule\n", readFile(t, fs, "/rules/emerging-dns.rules"))

	editor, _, out = newEditor(t, "3")
	require.NoError(t, editor.SelectRuleFile())
	assert.Contains(t, out.String(), "Invalid choice")

	editor, _, out = newEditor(t, "2", "5")
	require.NoError(t, editor.SelectRuleFile())
	assert.Contains(t, out.String(), "Invalid choice")
}

func TestUpdateInterface(t *testing.T) {
	editor, fs, _ := newEditor(t, "eth1", "no")
	require.NoError(t, editor.UpdateInterface())
	assert.Equal(t, "eth1", editor.Settings().Interface)
	assert.Contains(t, readFile(t, fs, "/settings.json"), `"interface": "eth1"`)

	editor, fs, _ = newEditor(t, "eth1", "yes")
	require.NoError(t, editor.UpdateInterface())
	assert.Equal(t, "", editor.Settings().Interface)
	assert.Contains(t, readFile(t, fs, "/settings.json"), `"interface": ""`)
}

func TestRun(t *testing.T) {
	var started *settings.Settings
	startSuricata = func(s settings.Settings) (*exec.Cmd, error) {
		started = &s
		return nil, nil
	}
	defer func() {
		startSuricata = launcher.Start
	}()

	editor, fs, out := newEditor(t,
		"/etc/suricata/rules",
		"",
		"/etc/suricata/custom.yaml",
		"",
		"no",
		"yes", "eth2", "no",
		"yes")
	require.NoError(t, editor.Run())

	require.NotNil(t, started)
	assert.Equal(t, "eth2", started.Interface)
	assert.Equal(t, "/etc/suricata/custom.yaml", started.ConfigPath)
	assert.Equal(t, "/usr/bin/suricata", started.SuricataPath)
	assert.Contains(t, readFile(t, fs, "/settings.json"), `"config_path": "/etc/suricata/custom.yaml"`)
	assert.Contains(t, out.String(), "Configuration complete!")
}

func TestRunWithoutInterface(t *testing.T) {
	editor, _, out := newEditor(t, "", "", "", "", "no", "no", "yes")
	require.NoError(t, editor.Run())
	assert.Contains(t, out.String(), "Network interface not set. Skipping Suricata start.")
}
