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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	logger.SetFormatter(&formatter{})
	defer SetLevel(INFO)

	Debug("hidden %d", 1)
	assert.Equal(t, "", buf.String())

	Info("hello %s", "world")
	assert.Contains(t, buf.String(), "(log_test.go:")
	assert.Contains(t, buf.String(), "<Info> -- hello world\n")

	buf.Reset()
	SetLevel(DEBUG)
	Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "<Debug> -- shown 2\n")

	buf.Reset()
	SetLevel(ERROR)
	Warning("hidden")
	Info("hidden")
	assert.Equal(t, "", buf.String())
	Error("failed: %v", "boom")
	assert.Contains(t, buf.String(), "<Error> -- failed: boom\n")
}

func TestColorFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	logger.SetFormatter(&formatter{color: true})
	defer logger.SetFormatter(&formatter{})

	Warning("careful")
	assert.Contains(t, buf.String(), YELLOW+"Warning"+RESET)
}
