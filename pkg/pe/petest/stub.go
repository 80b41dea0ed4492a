// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package petest builds minimal PE32+ images for tests.
package petest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	lfanew        = 0x40
	fileHeaderOff = lfanew + 4
	optHeaderOff  = fileHeaderOff + 20
	optHeaderSize = 0xf0
	sectionOff    = optHeaderOff + optHeaderSize
	sectionSize   = 40

	// HeaderSize is the file offset of the first section's raw data.
	HeaderSize = 0x400
	// FileAlignment is the raw size granularity sections are padded to.
	FileAlignment = 0x200
)

// Section is a section header to emit. Name is truncated to 8 bytes and NUL
// padded.
type Section struct {
	Name           string
	VirtualAddress uint32
	SizeOfRawData  uint32
}

// Directory is a data directory slot to emit.
type Directory struct {
	Index          int
	VirtualAddress uint32
	Size           uint32
}

// Stub describes the image Build produces.
type Stub struct {
	EntryPoint  uint32
	Sections    []Section
	Directories []Directory
}

// Build returns the bytes of a PE32+ image described by s.
func (s Stub) Build() []byte {
	size := uint32(HeaderSize)
	for _, sec := range s.Sections {
		size += align(sec.SizeOfRawData)
	}
	b := make([]byte, size)
	le := binary.LittleEndian

	copy(b, "MZ")
	le.PutUint32(b[0x3c:], lfanew)
	copy(b[lfanew:], "PE\x00\x00")

	fh := b[fileHeaderOff:]
	le.PutUint16(fh[0:], 0x8664) // AMD64
	le.PutUint16(fh[2:], uint16(len(s.Sections)))
	le.PutUint16(fh[16:], optHeaderSize)
	le.PutUint16(fh[18:], 0x0022) // EXECUTABLE_IMAGE | LARGE_ADDRESS_AWARE

	oh := b[optHeaderOff:]
	le.PutUint16(oh[0:], 0x20b)
	le.PutUint32(oh[16:], s.EntryPoint)
	le.PutUint64(oh[24:], 0x140000000)
	le.PutUint32(oh[32:], 0x1000)
	le.PutUint32(oh[36:], FileAlignment)
	le.PutUint16(oh[40:], 6)
	le.PutUint16(oh[48:], 6)
	le.PutUint32(oh[56:], s.sizeOfImage())
	le.PutUint32(oh[60:], HeaderSize)
	le.PutUint16(oh[68:], 3) // WINDOWS_CUI
	le.PutUint64(oh[72:], 0x100000)
	le.PutUint64(oh[80:], 0x1000)
	le.PutUint64(oh[88:], 0x100000)
	le.PutUint64(oh[96:], 0x1000)
	le.PutUint32(oh[108:], 16)
	for _, d := range s.Directories {
		dd := oh[112+8*d.Index:]
		le.PutUint32(dd[0:], d.VirtualAddress)
		le.PutUint32(dd[4:], d.Size)
	}

	raw := uint32(HeaderSize)
	for i, sec := range s.Sections {
		sh := b[sectionOff+sectionSize*i:]
		name := []byte(sec.Name)
		if len(name) > 8 {
			name = name[:8]
		}
		copy(sh[0:8], name)
		le.PutUint32(sh[8:], sec.SizeOfRawData)
		le.PutUint32(sh[12:], sec.VirtualAddress)
		le.PutUint32(sh[16:], sec.SizeOfRawData)
		if sec.SizeOfRawData > 0 {
			le.PutUint32(sh[20:], raw)
		}
		le.PutUint32(sh[36:], 0x40000040) // INITIALIZED_DATA | MEM_READ
		raw += align(sec.SizeOfRawData)
	}
	return b
}

func (s Stub) sizeOfImage() uint32 {
	end := uint32(0x1000)
	for _, sec := range s.Sections {
		if e := sec.VirtualAddress + sec.SizeOfRawData; e > end {
			end = e
		}
	}
	return (end + 0xfff) &^ 0xfff
}

func align(n uint32) uint32 {
	return (n + FileAlignment - 1) &^ (FileAlignment - 1)
}

// WriteFile writes the built stub into a temporary directory and returns its
// path.
func (s Stub) WriteFile(tb testing.TB, name string) string {
	tb.Helper()
	p := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(p, s.Build(), 0o644); err != nil {
		tb.Fatal(err)
	}
	return p
}
