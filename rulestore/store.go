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

// Package rulestore holds a rule file in memory as an ordered list of lines.
package rulestore

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jasonish/ruletool/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrOutOfRange is returned for line positions outside of the file.
var ErrOutOfRange = errors.New("line number out of range")

// ErrNotFound is returned by OpenExisting for a missing rule file.
var ErrNotFound = errors.New("rule file not found")

// Mode of rule files created by the store.
const defaultMode os.FileMode = 0644

// Store is a rule file loaded into memory. Positions are 1-based.
type Store struct {
	fs    afero.Fs
	path  string
	lines []string
}

// Open loads a rule file, creating it empty if it does not exist.
func Open(fs afero.Fs, path string) (*Store, error) {
	store := &Store{
		fs:   fs,
		path: path,
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !exists {
		log.Info("Rule file not found. Creating new: %s", path)
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", path)
		}
		if err := afero.WriteFile(fs, path, nil, defaultMode); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", path)
		}
		return store, nil
	}

	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

// OpenExisting loads a rule file, returning ErrNotFound if it does not
// exist.
func OpenExisting(fs afero.Fs, path string) (*Store, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !exists {
		return nil, errors.Wrap(ErrNotFound, path)
	}
	store := &Store{
		fs:   fs,
		path: path,
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) load() error {
	path := s.path
	file, err := s.fs.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	s.lines = lines
	log.Debug("Loaded %d lines from %s", len(lines), path)

	return nil
}

// ReadLines reads all lines from a reader with line endings removed.
func ReadLines(reader io.Reader) ([]string, error) {
	lines := []string{}
	bufReader := bufio.NewReader(reader)
	for {
		line, err := bufReader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Len() int {
	return len(s.lines)
}

// Lines returns a copy of the current lines.
func (s *Store) Lines() []string {
	lines := make([]string, len(s.lines))
	copy(lines, s.lines)
	return lines
}

func (s *Store) checkPosition(n int, max int) error {
	if n < 1 || n > max {
		return errors.Wrapf(ErrOutOfRange, "line %d of %d", n, len(s.lines))
	}
	return nil
}

// Line returns the text of line n.
func (s *Store) Line(n int) (string, error) {
	if err := s.checkPosition(n, len(s.lines)); err != nil {
		return "", err
	}
	return s.lines[n-1], nil
}

// Replace sets the text of line n.
func (s *Store) Replace(n int, text string) error {
	if err := s.checkPosition(n, len(s.lines)); err != nil {
		return err
	}
	s.lines[n-1] = text
	return nil
}

// InsertBefore inserts a line so that it becomes line n. Inserting at
// Len()+1 is the same as appending.
func (s *Store) InsertBefore(n int, text string) error {
	if err := s.checkPosition(n, len(s.lines)+1); err != nil {
		return err
	}
	s.lines = append(s.lines, "")
	copy(s.lines[n:], s.lines[n-1:])
	s.lines[n-1] = text
	return nil
}

// Delete removes line n.
func (s *Store) Delete(n int) error {
	if err := s.checkPosition(n, len(s.lines)); err != nil {
		return err
	}
	s.lines = append(s.lines[:n-1], s.lines[n:]...)
	return nil
}

// Append adds a line to the end of the in-memory list.
func (s *Store) Append(text string) {
	s.lines = append(s.lines, text)
}

// mode returns the permissions of the file on disk, or defaultMode if it
// does not exist.
func (s *Store) mode() (os.FileMode, error) {
	info, err := s.fs.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultMode, nil
		}
		return 0, errors.Wrapf(err, "failed to stat %s", s.path)
	}
	return info.Mode().Perm(), nil
}

// Save rewrites the whole file. The lines are written to a temporary file
// in the same directory which is then renamed over the original. The
// file keeps its permissions.
func (s *Store) Save() error {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	mode, err := s.mode()
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+base+".")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()

	writer := bufio.NewWriter(tmp)
	for _, line := range s.lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			tmp.Close()
			s.fs.Remove(tmpName)
			return errors.Wrapf(err, "failed to write %s", tmpName)
		}
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to close %s", tmpName)
	}
	if err := s.fs.Chmod(tmpName, mode); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to set mode of %s", tmpName)
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return errors.Wrapf(err, "failed to rename %s to %s", tmpName, s.path)
	}

	log.Debug("Wrote %d lines to %s", len(s.lines), s.path)
	return nil
}

// missingNewline returns true if the file on disk is not empty and its
// last byte is not a newline.
func (s *Store) missingNewline() (bool, error) {
	file, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to open %s", s.path)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", s.path)
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, errors.Wrapf(err, "failed to read %s", s.path)
	}
	return last[0] != '\n', nil
}

// AppendLine adds a line to the end of the file on disk without rewriting
// the rest of it. A final line without a newline is terminated first.
func (s *Store) AppendLine(text string) error {
	terminate, err := s.missingNewline()
	if err != nil {
		return err
	}
	record := text + "\n"
	if terminate {
		record = "\n" + record
	}
	file, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, defaultMode)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", s.path)
	}
	if _, err := file.WriteString(record); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to append to %s", s.path)
	}
	if err := file.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", s.path)
	}
	s.lines = append(s.lines, text)
	return nil
}
