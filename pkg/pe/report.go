// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// CLR sentinel lines.
const (
	CLRFound    = "  [OK] .NET COM Descriptor found!"
	CLRNotFound = "  [WARN] .NET COM Descriptor not found!"
)

// ErrorPrefix starts the single line written by ReportError.
const ErrorPrefix = "[ERR] Could not parse PE file: "

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported Format, text first.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// Report writes the human-readable report of img to w.
func Report(w io.Writer, img *Image) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "[PE] File: %s\n", img.Path)
	fmt.Fprintf(bw, "  Entry point: 0x%X\n", img.EntryPoint)
	fmt.Fprintln(bw, "  Sections:")
	for _, s := range img.Sections {
		fmt.Fprintf(bw, "    %s  VA: 0x%X  Size: %d\n", s.Name, s.VirtualAddress, s.SizeOfRawData)
	}
	fmt.Fprintf(bw, "  Number of sections: %d\n", len(img.Sections))
	fmt.Fprintln(bw, "  Data directories:")
	for i, d := range img.Directories {
		fmt.Fprintf(bw, "    %s: VA=0x%X Size=%d\n", DirectoryEntry(i), d.VirtualAddress, d.Size)
	}
	if img.HasCOMDescriptor() {
		fmt.Fprintln(bw, CLRFound)
	} else {
		fmt.Fprintln(bw, CLRNotFound)
	}
	return bw.Flush()
}

// ReportError writes the one-line failure report for err.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s%v\n", ErrorPrefix, err)
}

type sectionDoc struct {
	Name           string `json:"name" yaml:"name"`
	VirtualAddress uint32 `json:"virtual_address" yaml:"virtual_address"`
	SizeOfRawData  uint32 `json:"size_of_raw_data" yaml:"size_of_raw_data"`
}

type directoryDoc struct {
	Name           string `json:"name" yaml:"name"`
	VirtualAddress uint32 `json:"virtual_address" yaml:"virtual_address"`
	Size           uint32 `json:"size" yaml:"size"`
}

type document struct {
	File             string         `json:"file" yaml:"file"`
	Kind             string         `json:"kind" yaml:"kind"`
	EntryPoint       uint32         `json:"entry_point" yaml:"entry_point"`
	Sections         []sectionDoc   `json:"sections" yaml:"sections"`
	NumberOfSections int            `json:"number_of_sections" yaml:"number_of_sections"`
	DataDirectories  []directoryDoc `json:"data_directories" yaml:"data_directories"`
	COMDescriptor    bool           `json:"com_descriptor" yaml:"com_descriptor"`
	CLRHeader        bool           `json:"clr_header_decoded" yaml:"clr_header_decoded"`
}

func newDocument(img *Image) *document {
	doc := &document{
		File:             img.Path,
		Kind:             img.Kind(),
		EntryPoint:       img.EntryPoint,
		Sections:         []sectionDoc{},
		NumberOfSections: len(img.Sections),
		COMDescriptor:    img.HasCOMDescriptor(),
		CLRHeader:        img.CLRHeader,
	}
	for _, s := range img.Sections {
		doc.Sections = append(doc.Sections, sectionDoc(s))
	}
	for i := range img.Directories {
		d := img.Directory(DirectoryEntry(i))
		doc.DataDirectories = append(doc.DataDirectories, directoryDoc{
			Name:           DirectoryEntry(i).String(),
			VirtualAddress: d.VirtualAddress,
			Size:           d.Size,
		})
	}
	return doc
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *Image, format Format) error {
	switch format {
	case FormatText, "":
		return Report(w, img)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(img))
	case FormatYAML:
		b, err := yaml.Marshal(newDocument(img))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
