package rfc9636

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encode writes f as a version 2 TZif file. The version 1 block only
// carries the transitions that fit 32-bit times. Leap seconds are never
// written.
func Encode(f *File) []byte {
	var buf bytes.Buffer

	var abbrev []byte
	index := make(map[string]int)
	for _, t := range f.Types {
		if _, ok := index[t.Abbreviation]; !ok {
			index[t.Abbreviation] = len(abbrev)
			abbrev = append(append(abbrev, t.Abbreviation...), 0)
		}
	}

	var small []Transition
	for _, tr := range f.Transitions {
		if tr.When >= math.MinInt32 && tr.When <= math.MaxInt32 {
			small = append(small, tr)
		}
	}

	writeBlock := func(version byte, txs []Transition, size int) {
		buf.WriteString("TZif")
		buf.WriteByte(version)
		buf.Write(make([]byte, 15))
		for _, n := range []int{len(f.Types), len(f.Types), 0, len(txs), len(f.Types), len(abbrev)} {
			buf.Write(binary.BigEndian.AppendUint32(nil, uint32(n)))
		}
		for _, tr := range txs {
			if size == 4 {
				buf.Write(binary.BigEndian.AppendUint32(nil, uint32(int32(tr.When))))
			} else {
				buf.Write(binary.BigEndian.AppendUint64(nil, uint64(tr.When)))
			}
		}
		for _, tr := range txs {
			buf.WriteByte(byte(tr.Type))
		}
		for _, t := range f.Types {
			buf.Write(binary.BigEndian.AppendUint32(nil, uint32(int32(t.Offset))))
			buf.WriteByte(boolByte(t.IsDST))
			buf.WriteByte(byte(index[t.Abbreviation]))
		}
		buf.Write(abbrev)
		for _, t := range f.Types {
			buf.WriteByte(boolByte(t.IsStd))
		}
		for _, t := range f.Types {
			buf.WriteByte(boolByte(t.IsUT))
		}
	}

	writeBlock('2', small, 4)
	writeBlock('2', f.Transitions, 8)
	buf.WriteString("\n" + f.Footer + "\n")
	return buf.Bytes()
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
