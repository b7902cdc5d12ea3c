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
	"strings"

	"github.com/jasonish/ruletool/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const CustomRules = "custom.rules"

// ETRules is the list of Emerging Threats rule files offered for editing.
var ETRules = []string{
	"emerging-attack_response.rules",
	"emerging-adware_pup.rules",
	"emerging-activex.rules",
	"emerging-chat.rules",
	"emerging-coinminer.rules",
	"emerging-current_events.rules",
	"emerging-deleted.rules",
	"emerging-dns.rules",
	"emerging-dos.rules",
	"emerging-exploit.rules",
	"emerging-exploit_kit.rules",
	"emerging-ftp.rules",
	"emerging-games.rules",
	"emerging-hunting.rules",
	"emerging-icmp.rules",
	"emerging-icmp_info.rules",
	"emerging-imap.rules",
	"emerging-inappropriate.rules",
	"emerging-info.rules",
	"emerging-ja3.rules",
	"emerging-malware.rules",
	"emerging-misc.rules",
	"emerging-mobile_malware.rules",
	"emerging-netbios.rules",
	"emerging-p2p.rules",
	"emerging-phishing.rules",
	"emerging-policy.rules",
	"emerging-pop3.rules",
	"emerging-rpc.rules",
	"emerging-scan.rules",
	"emerging-shellcode.rules",
	"emerging-smtp.rules",
	"emerging-snmp.rules",
	"emerging-sql.rules",
	"emerging-telnet.rules",
	"emerging-tftp.rules",
	"emerging-user_agents.rules",
	"emerging-voip.rules",
	"emerging-web_client.rules",
	"emerging-web_server.rules",
	"emerging-web_specific_apps.rules",
	"emerging-worm.rules",
}

// Catalog kinds.
const (
	CatalogET     = "et"
	CatalogCustom = "custom"
)

var ErrUnknownCatalog = errors.New("unknown rule catalog")

// Catalog returns the rule file names belonging to a catalog.
func Catalog(kind string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case CatalogET, "1":
		files := make([]string, len(ETRules))
		copy(files, ETRules)
		return files, nil
	case CatalogCustom, "2":
		return []string{CustomRules}, nil
	}
	return nil, errors.Wrap(ErrUnknownCatalog, kind)
}

// Path returns the location of a rule file inside the rules folder. Names
// that are already paths are returned unchanged.
func Path(folder string, name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(folder, name)
}

// EnsureCustom makes sure the rules folder and its custom.rules file exist.
func EnsureCustom(fs afero.Fs, folder string) (string, error) {
	if err := fs.MkdirAll(folder, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", folder)
	}
	filename := filepath.Join(folder, CustomRules)
	exists, err := afero.Exists(fs, filename)
	if err != nil {
		return "", err
	}
	if !exists {
		log.Info("Creating %s", filename)
		if err := afero.WriteFile(fs, filename, nil, 0644); err != nil {
			return "", errors.Wrapf(err, "failed to create %s", filename)
		}
	}
	return filename, nil
}
