package rfc9636

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork() *File {
	return &File{
		Name:    "America/New_York",
		Version: 2,
		Types: []LocalTimeType{
			{Offset: -17762, Abbreviation: "LMT"},
			{Offset: -14400, IsDST: true, Abbreviation: "EDT"},
			{Offset: -18000, Abbreviation: "EST"},
		},
		Transitions: []Transition{
			{When: -2717650800, Type: 2},
			{When: 1710054000, Type: 1},
			{When: 1730613600, Type: 2},
		},
		Footer: "EST5EDT,M3.2.0,M11.1.0",
	}
}

func TestDecode(t *testing.T) {
	f, err := Decode("America/New_York", Encode(newYork()))
	require.NoError(t, err)
	assert.Equal(t, newYork(), f)
}

func TestDecodeWithoutFooter(t *testing.T) {
	utc := &File{Name: "UTC", Version: 2, Types: []LocalTimeType{{Abbreviation: "UTC"}}}
	f, err := Decode("UTC", Encode(utc))
	require.NoError(t, err)
	assert.Empty(t, f.Footer)
	assert.Empty(t, f.Transitions)
	assert.Equal(t, "UTC", f.Types[0].Abbreviation)
}

func TestDecodeBadData(t *testing.T) {
	good := Encode(newYork())
	for name, data := range map[string][]byte{
		"empty":     nil,
		"magic":     append([]byte("TZiF"), good[4:]...),
		"version":   append([]byte("TZif9"), good[5:]...),
		"truncated": good[:len(good)/2],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("x", data)
			assert.ErrorIs(t, err, ErrBadData)
		})
	}
}

func TestLoad(t *testing.T) {
	empty, dir := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "America"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "America", "New_York"), Encode(newYork()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zone.tab"), []byte("# not a TZif file\n"), 0o644))

	f, err := Load("America/New_York", []string{empty, dir})
	require.NoError(t, err)
	assert.Equal(t, "EST5EDT,M3.2.0,M11.1.0", f.Footer)

	_, err = Load("Europe/Nowhere", []string{empty, dir})
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = Load("zone.tab", []string{dir})
	assert.ErrorIs(t, err, ErrBadData)

	_, err = Load("../etc/passwd", []string{dir})
	assert.Error(t, err)
}

func TestValidName(t *testing.T) {
	assert.True(t, ValidName("America/Argentina/Buenos_Aires"))
	assert.True(t, ValidName("UTC"))
	for _, name := range []string{"", "/etc/localtime", "a//b", "a/../b", "..", `a\b`} {
		assert.False(t, ValidName(name), name)
	}
}

func TestLoadSystemZone(t *testing.T) {
	f, err := Load("America/New_York", []string{"/usr/share/zoneinfo"})
	if err != nil {
		t.Skip("system zoneinfo is not available")
	}
	assert.GreaterOrEqual(t, f.Version, 2)
	assert.Equal(t, "EST5EDT,M3.2.0,M11.1.0", f.Footer)
	assert.NotEmpty(t, f.Transitions)
}
