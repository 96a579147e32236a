// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rfc9636 reads the Time Zone Information Format (TZif) files of the
// IANA time zone database, as described by RFC 9636 and tzfile(5).
package rfc9636

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalTimeType is one of the local time types a file defines, such as CET.
type LocalTimeType struct {
	Offset       int    // seconds east of UTC, daylight saving included
	IsDST        bool   // is this type daylight saving time?
	Abbreviation string // "CET"

	// transitions into this type were specified in standard or universal
	// time; informational only
	IsStd bool
	IsUT  bool
}

// Transition is the switch to a local time type at an instant.
type Transition struct {
	When int64 // seconds since 1970-01-01 UTC
	Type int   // index into File.Types
}

// File is the decoded content of a TZif file. Transitions are in
// chronological order. Types[0] applies before the first transition.
type File struct {
	Name        string
	Version     int
	Types       []LocalTimeType
	Transitions []Transition

	// Footer is the TZ string, without the surrounding newlines, that
	// describes local time after the last transition, for example
	// "PST8PDT,M3.2.0,M11.1.0". It is empty for version 1 files.
	Footer string
}

// Load reads the file of the named zone from the first directory that
// has it.
func Load(name string, dirs []string) (*File, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid time zone name %q", name)
	}
	var firstErr error
	for _, dir := range dirs {
		data, err := readFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err == nil {
			f, err := Decode(name, data)
			if err == nil {
				return f, nil
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("%s in %s: %w", name, dir, err)
			}
			continue
		}
		if firstErr == nil && !errors.Is(err, fs.ErrNotExist) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("unknown time zone %s: %w", name, fs.ErrNotExist)
}

// ValidName rejects names that could escape a zoneinfo directory.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

// maxFileSize is the max permitted size of files read by readFile.
// Real TZif files are a few KB.
const maxFileSize = 10 << 20

type fileSizeError string

func (f fileSizeError) Error() string {
	return "rfc9636: file " + string(f) + " is too large"
}

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFileSize {
		return nil, fileSizeError(name)
	}
	return data, nil
}
