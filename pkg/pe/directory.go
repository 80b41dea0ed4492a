// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pe

import "fmt"

// DirectoryEntry indexes the data directory array of the optional header.
type DirectoryEntry int

// Well-known data directory slots, in header order.
const (
	DirectoryExport DirectoryEntry = iota
	DirectoryImport
	DirectoryResource
	DirectoryException
	DirectorySecurity
	DirectoryBaseReloc
	DirectoryDebug
	DirectoryCopyright
	DirectoryGlobalPtr
	DirectoryTLS
	DirectoryLoadConfig
	DirectoryBoundImport
	DirectoryIAT
	DirectoryDelayImport
	DirectoryCOMDescriptor
	DirectoryReserved

	// NumDirectoryEntries is the number of slots every Image reports.
	NumDirectoryEntries = 16
)

var directoryNames = [NumDirectoryEntries]string{
	"IMAGE_DIRECTORY_ENTRY_EXPORT",
	"IMAGE_DIRECTORY_ENTRY_IMPORT",
	"IMAGE_DIRECTORY_ENTRY_RESOURCE",
	"IMAGE_DIRECTORY_ENTRY_EXCEPTION",
	"IMAGE_DIRECTORY_ENTRY_SECURITY",
	"IMAGE_DIRECTORY_ENTRY_BASERELOC",
	"IMAGE_DIRECTORY_ENTRY_DEBUG",
	"IMAGE_DIRECTORY_ENTRY_COPYRIGHT",
	"IMAGE_DIRECTORY_ENTRY_GLOBALPTR",
	"IMAGE_DIRECTORY_ENTRY_TLS",
	"IMAGE_DIRECTORY_ENTRY_LOAD_CONFIG",
	"IMAGE_DIRECTORY_ENTRY_BOUND_IMPORT",
	"IMAGE_DIRECTORY_ENTRY_IAT",
	"IMAGE_DIRECTORY_ENTRY_DELAY_IMPORT",
	"IMAGE_DIRECTORY_ENTRY_COM_DESCRIPTOR",
	"IMAGE_DIRECTORY_ENTRY_RESERVED",
}

// String returns the IMAGE_DIRECTORY_ENTRY_* name of d.
func (d DirectoryEntry) String() string {
	if d < 0 || int(d) >= len(directoryNames) {
		return fmt.Sprintf("IMAGE_DIRECTORY_ENTRY_%d", int(d))
	}
	return directoryNames[d]
}

// DataDirectory is one (address, size) slot of the optional header.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}
