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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/jasonish/ruletool/cmd/edit"
	"github.com/jasonish/ruletool/cmd/rulecmd"
	"github.com/jasonish/ruletool/cmd/settingscmd"
	"github.com/jasonish/ruletool/core"
	"github.com/jasonish/ruletool/log"
	"github.com/joho/godotenv"
)

func VersionMain() {
	fmt.Printf("ruletool Version %s (rev %s); os=%s, arch=%s\n",
		core.BuildVersion, core.BuildRev, runtime.GOOS, runtime.GOARCH)
}

func Usage() {
	usage := fmt.Sprintf(`Usage: %s <command> [options]

Commands:
    edit            Interactive settings and rule editor
    show            Show the rules in a file
    set             Set an option on one rule
    insert          Insert a rule before a line
    delete          Delete a line
    append          Append a rule
    check           Check a rule file for problems
    settings        Show or change settings
    run             Start Suricata
    version         Print the version

Global options:
    -s, --settings  Settings file (default: ./settings.json)
    -v, --verbose   Be more verbose

`, os.Args[0])
	fmt.Fprint(os.Stderr, usage)
}

// loadDotEnv reads environment overrides from ./.env if there is one.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Warning("Failed to load .env: %v", err)
	}
}

func main() {

	if len(os.Args) == 1 || os.Args[1][0] == '-' {
		Usage()
		os.Exit(0)
	}

	loadDotEnv()

	args := os.Args[2:]

	switch os.Args[1] {
	case "version":
		VersionMain()
	case "edit":
		edit.Main(args)
	case "show":
		rulecmd.ShowMain(args)
	case "set":
		rulecmd.SetMain(args)
	case "insert":
		rulecmd.InsertMain(args)
	case "delete":
		rulecmd.DeleteMain(args)
	case "append":
		rulecmd.AppendMain(args)
	case "check":
		rulecmd.CheckMain(args)
	case "settings":
		settingscmd.SettingsMain(args)
	case "run":
		settingscmd.RunMain(args)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
