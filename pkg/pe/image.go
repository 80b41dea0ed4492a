// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pe loads the header fields of a Portable Executable and reports them.
//
// Parsing is done by github.com/saferwall/pe. This package only keeps the
// fields the report needs and formats them.
package pe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	sfpe "github.com/saferwall/pe"
)

var (
	// ErrOpen is returned when the file could not be opened or mapped.
	ErrOpen = errors.New("cannot open file")
	// ErrFormat is returned when the parser rejects the file contents.
	ErrFormat = errors.New("invalid PE image")
)

// Optional header magic values.
const (
	MagicPE32     = 0x10b
	MagicPE32Plus = 0x20b
)

// Section describes one entry of the section table.
type Section struct {
	Name           string
	VirtualAddress uint32
	SizeOfRawData  uint32
}

// Image is the subset of a parsed PE file that pecheck reports.
type Image struct {
	Path        string
	Magic       uint16
	EntryPoint  uint32
	Sections    []Section
	Directories [NumDirectoryEntries]DataDirectory

	// CLRHeader is set when the parser decoded the CLR (.NET) header the
	// COM descriptor points at.
	CLRHeader bool
}

// HasCOMDescriptor reports whether the CLR (.NET) data directory is populated.
func (img *Image) HasCOMDescriptor() bool {
	d := img.Directory(DirectoryCOMDescriptor)
	return d.VirtualAddress != 0 && d.Size != 0
}

// Directory returns the data directory in slot d.
func (img *Image) Directory(d DirectoryEntry) DataDirectory {
	if d < 0 || int(d) >= len(img.Directories) {
		return DataDirectory{}
	}
	return img.Directories[d]
}

// Is64 reports whether the image has a PE32+ optional header.
func (img *Image) Is64() bool {
	return img.Magic == MagicPE32Plus
}

// Kind names the optional header flavour.
func (img *Image) Kind() string {
	if img.Is64() {
		return "PE32+"
	}
	return "PE32"
}

type options struct {
	logger *log.Logger
}

// Option configures Load and LoadBytes.
type Option func(*options)

// WithLogger sends parser diagnostics to l. Without it they are dropped.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func (o *options) parserOptions() *sfpe.Options {
	return &sfpe.Options{
		Logger:                parserLogger{l: o.logger},
		DisableCertValidation: true,
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load parses the PE file at path.
func Load(path string, opts ...Option) (*Image, error) {
	o := newOptions(opts)
	f, err := sfpe.New(path, o.parserOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()

	if o.logger != nil {
		if fi, err := os.Stat(path); err == nil {
			o.logger.Printf("mapped %s (%s)", path, humanize.Bytes(uint64(fi.Size())))
		}
	}
	return parse(path, f)
}

// LoadBytes parses an in-memory PE image. name is only used for reporting.
func LoadBytes(name string, data []byte, opts ...Option) (*Image, error) {
	o := newOptions(opts)
	f, err := sfpe.NewBytes(data, o.parserOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if o.logger != nil {
		o.logger.Printf("loaded %s (%s)", name, humanize.Bytes(uint64(len(data))))
	}
	// f does not own data, so there is nothing to close.
	return parse(name, f)
}

func parse(name string, f *sfpe.File) (*Image, error) {
	if err := f.Parse(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	img := &Image{
		Path:      name,
		CLRHeader: f.FileInfo.HasCLR,
	}

	var dirs []sfpe.DataDirectory
	switch oh := f.NtHeader.OptionalHeader.(type) {
	case sfpe.ImageOptionalHeader32:
		img.Magic, img.EntryPoint, dirs = oh.Magic, oh.AddressOfEntryPoint, oh.DataDirectory[:]
	case *sfpe.ImageOptionalHeader32:
		img.Magic, img.EntryPoint, dirs = oh.Magic, oh.AddressOfEntryPoint, oh.DataDirectory[:]
	case sfpe.ImageOptionalHeader64:
		img.Magic, img.EntryPoint, dirs = oh.Magic, oh.AddressOfEntryPoint, oh.DataDirectory[:]
	case *sfpe.ImageOptionalHeader64:
		img.Magic, img.EntryPoint, dirs = oh.Magic, oh.AddressOfEntryPoint, oh.DataDirectory[:]
	default:
		return nil, fmt.Errorf("%w: no optional header", ErrFormat)
	}
	for i := range img.Directories {
		if i < len(dirs) {
			img.Directories[i] = DataDirectory{
				VirtualAddress: dirs[i].VirtualAddress,
				Size:           dirs[i].Size,
			}
		}
	}

	for _, h := range sectionTable(f) {
		img.Sections = append(img.Sections, Section{
			Name:           sectionName(h.Name[:]),
			VirtualAddress: h.VirtualAddress,
			SizeOfRawData:  h.SizeOfRawData,
		})
	}
	return img, nil
}

// sectionTable returns the section headers the parser accepted, in section
// table order. The parser keeps a prefix of the table but sorts it by
// VirtualAddress, so the prefix is re-read from the table itself.
func sectionTable(f *sfpe.File) []sfpe.ImageSectionHeader {
	var hdr sfpe.ImageSectionHeader
	n := uint32(len(f.Sections))
	size := uint32(binary.Size(hdr))
	offset := f.DOSHeader.AddressOfNewEXEHeader + 4 +
		uint32(binary.Size(f.NtHeader.FileHeader)) +
		uint32(f.NtHeader.FileHeader.SizeOfOptionalHeader)

	sorted := make([]sfpe.ImageSectionHeader, 0, n)
	for _, s := range f.Sections {
		sorted = append(sorted, s.Header)
	}
	if n == 0 {
		return sorted
	}
	b, err := f.ReadBytesAtOffset(offset, n*size)
	if err != nil {
		return sorted
	}
	table := make([]sfpe.ImageSectionHeader, n)
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, table); err != nil {
		return sorted
	}
	return table
}

// sectionName strips the NUL padding of a raw section name.
func sectionName(raw []byte) string {
	return strings.TrimRight(string(raw), "\x00")
}
