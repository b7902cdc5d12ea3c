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

package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompter(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("  answer  \r\nyes\nNo\n  raw text \nlast"), out)

	value, err := p.ReadString("Question")
	assert.Nil(t, err)
	assert.Equal(t, "answer", value)
	assert.Equal(t, "Question: ", out.String())

	yes, err := p.Confirm("Sure?")
	assert.Nil(t, err)
	assert.True(t, yes)
	assert.Contains(t, out.String(), "Sure? (yes/no): ")

	yes, err = p.Confirm("Sure?")
	assert.Nil(t, err)
	assert.False(t, yes)

	value, err = p.ReadRaw("Raw")
	assert.Nil(t, err)
	assert.Equal(t, "  raw text ", value)

	// The last line has no newline.
	value, err = p.ReadString("Last")
	assert.Nil(t, err)
	assert.Equal(t, "last", value)

	_, err = p.ReadString("Gone")
	assert.True(t, IsEOF(err))

	yes, err = p.Confirm("Gone")
	assert.False(t, yes)
	assert.True(t, IsEOF(err))
}

func TestColors(t *testing.T) {
	Colorize = false
	assert.Equal(t, "12", Green(12))
	Colorize = true
	assert.Equal(t, "\x1b[34mx\x1b[0m", Blue("x"))
	Colorize = false
}
