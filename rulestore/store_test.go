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

package rulestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeRules = `alert tcp any any -> any any (msg:"one"; sid:1;)
alert tcp any any -> any any (msg:"two"; sid:2;)
alert tcp any any -> any any (msg:"three"; sid:3;)
`

func newStore(t *testing.T, content string) (afero.Fs, *Store) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/rules/test.rules", []byte(content), 0644))
	store, err := Open(fs, "/rules/test.rules")
	require.NoError(t, err)
	return fs, store
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	buf, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(buf)
}

func TestOpenMissingFileCreatesIt(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := Open(fs, "/rules/custom.rules")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	exists, err := afero.Exists(fs, "/rules/custom.rules")
	assert.Nil(t, err)
	assert.True(t, exists)
	assert.Equal(t, "", readFile(t, fs, "/rules/custom.rules"))
}

func TestOpenStripsLineEndings(t *testing.T) {
	_, store := newStore(t, "one\r\ntwo\n\nlast")
	assert.Equal(t, []string{"one", "two", "", "last"}, store.Lines())
}

func TestLine(t *testing.T) {
	_, store := newStore(t, threeRules)
	line, err := store.Line(2)
	assert.Nil(t, err)
	assert.Equal(t, `alert tcp any any -> any any (msg:"two"; sid:2;)`, line)

	_, err = store.Line(0)
	assert.Equal(t, ErrOutOfRange, errors.Cause(err))
	_, err = store.Line(4)
	assert.Equal(t, ErrOutOfRange, errors.Cause(err))
}

func TestReplaceAndSave(t *testing.T) {
	fs, store := newStore(t, threeRules)
	require.NoError(t, store.Replace(1, "replaced"))
	require.NoError(t, store.Save())

	assert.Equal(t, `replaced
alert tcp any any -> any any (msg:"two"; sid:2;)
alert tcp any any -> any any (msg:"three"; sid:3;)
`, readFile(t, fs, "/rules/test.rules"))

	// No temporary files are left behind.
	infos, err := afero.ReadDir(fs, "/rules")
	assert.Nil(t, err)
	assert.Equal(t, 1, len(infos))
}

func TestDeleteOutOfRange(t *testing.T) {
	fs, store := newStore(t, threeRules)

	for _, n := range []int{-1, 0, 4, 100} {
		err := store.Delete(n)
		assert.Equal(t, ErrOutOfRange, errors.Cause(err))
	}
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, threeRules, readFile(t, fs, "/rules/test.rules"))
}

func TestDelete(t *testing.T) {
	_, store := newStore(t, "a\nb\nc\n")
	require.NoError(t, store.Delete(2))
	assert.Equal(t, []string{"a", "c"}, store.Lines())
	require.NoError(t, store.Delete(2))
	assert.Equal(t, []string{"a"}, store.Lines())
	require.NoError(t, store.Delete(1))
	assert.Equal(t, []string{}, store.Lines())
}

func TestInsertBefore(t *testing.T) {
	_, store := newStore(t, "a\nb\n")

	require.NoError(t, store.InsertBefore(1, "first"))
	assert.Equal(t, []string{"first", "a", "b"}, store.Lines())

	require.NoError(t, store.InsertBefore(3, "middle"))
	assert.Equal(t, []string{"first", "a", "middle", "b"}, store.Lines())

	// One past the end appends.
	require.NoError(t, store.InsertBefore(5, "last"))
	assert.Equal(t, []string{"first", "a", "middle", "b", "last"}, store.Lines())

	err := store.InsertBefore(7, "nope")
	assert.Equal(t, ErrOutOfRange, errors.Cause(err))
	err = store.InsertBefore(0, "nope")
	assert.Equal(t, ErrOutOfRange, errors.Cause(err))
	assert.Equal(t, 5, store.Len())
}

func TestInsertIntoEmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := Open(fs, "/rules/new.rules")
	require.NoError(t, err)

	require.NoError(t, store.InsertBefore(1, "only line"))
	require.NoError(t, store.Save())
	assert.Equal(t, "only line\n", readFile(t, fs, "/rules/new.rules"))
}

func TestAppendLine(t *testing.T) {
	fs, store := newStore(t, "a\n")
	require.NoError(t, store.AppendLine("b"))
	assert.Equal(t, "a\nb\n", readFile(t, fs, "/rules/test.rules"))
	assert.Equal(t, []string{"a", "b"}, store.Lines())
}

func TestAppendLineAfterUnterminatedLine(t *testing.T) {
	fs, store := newStore(t, "alert tcp any any -> any any (sid:1;)")
	require.NoError(t, store.AppendLine("alert tcp any any -> any any (sid:2;)"))
	assert.Equal(t, "alert tcp any any -> any any (sid:1;)\nalert tcp any any -> any any (sid:2;)\n",
		readFile(t, fs, "/rules/test.rules"))

	reopened, err := Open(fs, "/rules/test.rules")
	require.NoError(t, err)
	assert.Equal(t, store.Lines(), reopened.Lines())
	assert.Equal(t, 2, reopened.Len())
}

func TestAppendLineToEmptyFile(t *testing.T) {
	fs, store := newStore(t, "")
	require.NoError(t, store.AppendLine("a"))
	assert.Equal(t, "a\n", readFile(t, fs, "/rules/test.rules"))
}

func TestSaveKeepsFileMode(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "test.rules")
	require.NoError(t, afero.WriteFile(fs, path, []byte(threeRules), 0644))
	require.NoError(t, fs.Chmod(path, 0640))

	store, err := Open(fs, path)
	require.NoError(t, err)
	require.NoError(t, store.Delete(1))
	require.NoError(t, store.Save())

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
	assert.Equal(t, 2, len(store.Lines()))
}

func TestSaveNewFileMode(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "new.rules")
	store, err := Open(fs, path)
	require.NoError(t, err)
	require.NoError(t, fs.Remove(path))
	store.Append("a")
	require.NoError(t, store.Save())

	info, err := fs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestOpenExisting(t *testing.T) {
	fs, _ := newStore(t, threeRules)
	store, err := OpenExisting(fs, "/rules/test.rules")
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	_, err = OpenExisting(fs, "/rules/typo.rules")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	exists, _ := afero.Exists(fs, "/rules/typo.rules")
	assert.False(t, exists)
}

func TestLinesIsACopy(t *testing.T) {
	_, store := newStore(t, "a\n")
	lines := store.Lines()
	lines[0] = "changed"
	line, _ := store.Line(1)
	assert.Equal(t, "a", line)
}
