// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pe

import (
	"bytes"
	"encoding/binary"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/u-root/pecheck/pkg/pe/petest"
)

var twoSections = petest.Stub{
	EntryPoint: 0x1234,
	Sections: []petest.Section{
		{Name: ".text", VirtualAddress: 0x1000, SizeOfRawData: 0x200},
		{Name: ".rdata", VirtualAddress: 0x2000, SizeOfRawData: 0x400},
	},
	Directories: []petest.Directory{
		{Index: int(DirectoryCopyright), VirtualAddress: 0x2100, Size: 0x30},
		{Index: int(DirectoryGlobalPtr), VirtualAddress: 0x2200, Size: 0x8},
	},
}

func TestLoad(t *testing.T) {
	img, err := Load(twoSections.WriteFile(t, "two.exe"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(img.Path, "two.exe"))
	assert.True(t, img.Is64())
	assert.Equal(t, uint32(0x1234), img.EntryPoint)
	assert.Equal(t, []Section{
		{Name: ".text", VirtualAddress: 0x1000, SizeOfRawData: 0x200},
		{Name: ".rdata", VirtualAddress: 0x2000, SizeOfRawData: 0x400},
	}, img.Sections)
	assert.Equal(t, DataDirectory{VirtualAddress: 0x2100, Size: 0x30}, img.Directory(DirectoryCopyright))
	assert.Equal(t, DataDirectory{VirtualAddress: 0x2200, Size: 0x8}, img.Directory(DirectoryGlobalPtr))
	assert.Equal(t, DataDirectory{}, img.Directory(DirectoryImport))
	assert.False(t, img.HasCOMDescriptor())
	assert.False(t, img.CLRHeader)
}

func TestLoadCOMDescriptor(t *testing.T) {
	for _, tt := range []struct {
		name string
		dirs []petest.Directory
		want string
	}{
		{
			name: "populated",
			dirs: []petest.Directory{{Index: int(DirectoryCOMDescriptor), VirtualAddress: 0x1000, Size: 72}},
			want: CLRFound,
		},
		{
			name: "zero",
			want: CLRNotFound,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			stub := petest.Stub{
				EntryPoint:  0x1000,
				Sections:    []petest.Section{{Name: ".text", VirtualAddress: 0x1000, SizeOfRawData: 0x200}},
				Directories: tt.dirs,
			}
			img, err := LoadBytes("clr.dll", stub.Build())
			require.NoError(t, err)

			var b bytes.Buffer
			require.NoError(t, Report(&b, img))
			lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
			assert.Equal(t, tt.want, lines[len(lines)-1])
		})
	}
}

func TestLoadSectionTableOrder(t *testing.T) {
	stub := petest.Stub{
		EntryPoint: 0x1000,
		Sections: []petest.Section{
			{Name: ".late", VirtualAddress: 0x3000, SizeOfRawData: 0x200},
			{Name: ".early", VirtualAddress: 0x1000, SizeOfRawData: 0x400},
		},
	}
	want := []Section{
		{Name: ".late", VirtualAddress: 0x3000, SizeOfRawData: 0x200},
		{Name: ".early", VirtualAddress: 0x1000, SizeOfRawData: 0x400},
	}

	img, err := LoadBytes("order.exe", stub.Build())
	require.NoError(t, err)
	assert.Equal(t, want, img.Sections)

	img, err = Load(stub.WriteFile(t, "order.exe"))
	require.NoError(t, err)
	assert.Equal(t, want, img.Sections)
}

func TestLoadEntryPointMatchesHeaderBytes(t *testing.T) {
	b := twoSections.Build()
	lfanew := binary.LittleEndian.Uint32(b[0x3c:])
	want := binary.LittleEndian.Uint32(b[lfanew+4+20+16:])

	img, err := LoadBytes("two.exe", b)
	require.NoError(t, err)
	assert.Equal(t, want, img.EntryPoint)
}

func TestLoadNoSections(t *testing.T) {
	img, err := Load(petest.Stub{EntryPoint: 0x1000}.WriteFile(t, "empty.exe"))
	require.NoError(t, err)

	assert.Empty(t, img.Sections)

	var b bytes.Buffer
	require.NoError(t, Report(&b, img))
	assert.Contains(t, b.String(), "  Number of sections: 0\n")
	assert.Contains(t, b.String(), "  Sections:\n  Number of sections: 0\n")
}

func TestLoadFullWidthSectionName(t *testing.T) {
	stub := petest.Stub{
		EntryPoint: 0x1000,
		Sections:   []petest.Section{{Name: ".textbss", VirtualAddress: 0x1000}},
	}
	img, err := LoadBytes("bss.exe", stub.Build())
	require.NoError(t, err)
	require.Len(t, img.Sections, 1)
	assert.Equal(t, ".textbss", img.Sections[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.dll"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.NotErrorIs(t, err, ErrFormat)
}

func TestLoadGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "garbage.dll")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte("not a PE file "), 64), 0o644))

	_, err := Load(p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadBytesTruncated(t *testing.T) {
	_, err := LoadBytes("short.exe", twoSections.Build()[:0x50])
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadLogger(t *testing.T) {
	var b bytes.Buffer
	_, err := Load(twoSections.WriteFile(t, "two.exe"), WithLogger(log.New(&b, "", 0)))
	require.NoError(t, err)
	assert.Contains(t, b.String(), "mapped ")
}

func TestSectionName(t *testing.T) {
	for _, tt := range []struct {
		raw  []byte
		want string
	}{
		{[]byte(".text\x00\x00\x00"), ".text"},
		{[]byte(".textbss"), ".textbss"},
		{[]byte("\x00\x00\x00\x00\x00\x00\x00\x00"), ""},
		{[]byte("a\x00b\x00\x00\x00\x00\x00"), "a\x00b"},
		{[]byte(" pad \x00\x00\x00"), " pad "},
	} {
		assert.Equal(t, tt.want, sectionName(tt.raw))
	}
}
