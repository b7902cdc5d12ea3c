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

package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARNING
	INFO
	DEBUG
)

const (
	GREEN  = "\x1b[32m"
	BLUE   = "\x1b[34m"
	YELLOW = "\x1b[33m"
	RED    = "\x1b[31m"
	RESET  = "\x1b[0m"
)

var logger = logrus.New()

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&formatter{color: isatty.IsTerminal(os.Stderr.Fd())})
	logger.SetLevel(logrus.InfoLevel)
}

// formatter renders "<time> (<file>:<line>) <Level> -- <message>".
type formatter struct {
	color bool
}

func (f *formatter) paint(color string, v interface{}) string {
	if !f.color {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%s%v%s", color, v, RESET)
}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	var label string
	message := entry.Message
	switch entry.Level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		label = f.paint(RED, "Error")
		message = f.paint(RED, message)
	case logrus.WarnLevel:
		label = f.paint(YELLOW, "Warning")
	case logrus.DebugLevel, logrus.TraceLevel:
		label = f.paint(YELLOW, "Debug")
	default:
		label = f.paint(BLUE, "Info")
	}

	caller, _ := entry.Data["caller"].(string)
	fmt.Fprintf(b, "%s (%s) <%s> -- %s\n",
		f.paint(GREEN, entry.Time.Format("2006-01-02 15:04:05")),
		f.paint(BLUE, caller), label, message)
	return b.Bytes(), nil
}

func SetLevel(level LogLevel) {
	switch level {
	case ERROR:
		logger.SetLevel(logrus.ErrorLevel)
	case WARNING:
		logger.SetLevel(logrus.WarnLevel)
	case DEBUG:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func withCaller(calldepth int) *logrus.Entry {
	_, filename, line, ok := runtime.Caller(calldepth)
	if !ok {
		return logrus.NewEntry(logger)
	}
	return logger.WithField("caller",
		fmt.Sprintf("%s:%d", filepath.Base(filename), line))
}

func Error(format string, v ...interface{}) {
	withCaller(2).Errorf(format, v...)
}

func Warning(format string, v ...interface{}) {
	withCaller(2).Warnf(format, v...)
}

func Info(format string, v ...interface{}) {
	withCaller(2).Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	withCaller(2).Debugf(format, v...)
}

// Promote to info...
func Println(v ...interface{}) {
	withCaller(2).Info(fmt.Sprint(v...))
}

// To be compatible with standard logging, promote to info.
func Printf(format string, v ...interface{}) {
	withCaller(2).Infof(format, v...)
}

func Fatal(v ...interface{}) {
	withCaller(2).Error(fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	withCaller(2).Errorf(format, v...)
	os.Exit(1)
}
