// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rfc9636

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Simple I/O interface to binary blob of data.
type dataIO struct {
	p     []byte
	error bool
}

func (d *dataIO) read(n int) []byte {
	if n < 0 || len(d.p) < n {
		d.p = nil
		d.error = true
		return nil
	}
	p := d.p[0:n]
	d.p = d.p[n:]
	return p
}

func (d *dataIO) big4() (uint32, bool) {
	p := d.read(4)
	if p == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(p), true
}

func (d *dataIO) big8() (uint64, bool) {
	p := d.read(8)
	if p == nil {
		return 0, false
	}
	return binary.BigEndian.Uint64(p), true
}

func (d *dataIO) byte() (byte, bool) {
	p := d.read(1)
	if p == nil {
		return 0, false
	}
	return p[0], true
}

// rest returns the rest of the data in the buffer.
func (d *dataIO) rest() []byte {
	r := d.p
	d.p = nil
	return r
}

// byteString makes a string by stopping at the first NUL.
func byteString(p []byte) string {
	if i := bytes.IndexByte(p, 0); i != -1 {
		p = p[:i]
	}
	return string(p)
}

var ErrBadData = errors.New("malformed time zone information")

// header counts, in file order
const (
	nUTLocal = iota
	nStdWall
	nLeap
	nTime
	nType
	nChar
)

type counts [6]int

func readHeader(d *dataIO) (int, counts, error) {
	var n counts
	if magic := d.read(4); string(magic) != "TZif" {
		return 0, n, fmt.Errorf("%w: bad magic", ErrBadData)
	}
	p := d.read(16)
	if p == nil {
		return 0, n, fmt.Errorf("%w: short header", ErrBadData)
	}
	var version int
	switch p[0] {
	case 0:
		version = 1
	case '2', '3', '4':
		version = int(p[0] - '0')
	default:
		return 0, n, fmt.Errorf("%w: unknown version %q", ErrBadData, p[0])
	}
	for i := range n {
		nn, ok := d.big4()
		if !ok || int32(nn) < 0 {
			return 0, n, fmt.Errorf("%w: bad header count", ErrBadData)
		}
		n[i] = int(nn)
	}
	return version, n, nil
}

// Decode parses the content of a TZif file. Version 2 and later files carry
// the data twice; only the 64-bit copy is read.
func Decode(name string, data []byte) (*File, error) {
	d := dataIO{p: data}
	version, n, err := readHeader(&d)
	if err != nil {
		return nil, err
	}

	size := 4
	if version > 1 {
		d.read(n[nTime]*5 + n[nType]*6 + n[nChar] + n[nLeap]*8 + n[nStdWall] + n[nUTLocal])
		if d.error {
			return nil, fmt.Errorf("%w: truncated version 1 block", ErrBadData)
		}
		if version, n, err = readHeader(&d); err != nil {
			return nil, err
		}
		size = 8
	}

	times := dataIO{p: d.read(n[nTime] * size)}
	indices := d.read(n[nTime])
	types := dataIO{p: d.read(n[nType] * 6)}
	abbrev := d.read(n[nChar])
	d.read(n[nLeap] * (size + 4))
	isstd := d.read(n[nStdWall])
	isut := d.read(n[nUTLocal])
	if d.error {
		return nil, fmt.Errorf("%w: truncated data block", ErrBadData)
	}

	f := &File{Name: name, Version: version}
	if rest := d.rest(); len(rest) > 2 && rest[0] == '\n' && rest[len(rest)-1] == '\n' {
		f.Footer = string(rest[1 : len(rest)-1])
	}

	if n[nType] == 0 {
		return nil, fmt.Errorf("%w: no local time types", ErrBadData)
	}
	f.Types = make([]LocalTimeType, n[nType])
	for i := range f.Types {
		off, _ := types.big4()
		dst, _ := types.byte()
		idx, ok := types.byte()
		if !ok || int(idx) >= len(abbrev) {
			return nil, fmt.Errorf("%w: bad local time type %d", ErrBadData, i)
		}
		f.Types[i] = LocalTimeType{Offset: int(int32(off)), IsDST: dst != 0, Abbreviation: byteString(abbrev[idx:])}
		// the indicators count either zero or once per type
		if i < len(isstd) {
			f.Types[i].IsStd = isstd[i] != 0
		}
		if i < len(isut) {
			f.Types[i].IsUT = isut[i] != 0
		}
	}

	f.Transitions = make([]Transition, n[nTime])
	for i := range f.Transitions {
		var when int64
		if size == 4 {
			v, _ := times.big4()
			when = int64(int32(v))
		} else {
			v, _ := times.big8()
			when = int64(v)
		}
		if int(indices[i]) >= len(f.Types) {
			return nil, fmt.Errorf("%w: transition %d refers to type %d", ErrBadData, i, indices[i])
		}
		if i > 0 && when <= f.Transitions[i-1].When {
			return nil, fmt.Errorf("%w: transition %d out of order", ErrBadData, i)
		}
		f.Transitions[i] = Transition{When: when, Type: int(indices[i])}
	}
	return f, nil
}
