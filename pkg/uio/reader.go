// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uio

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// ErrTooLarge is wrapped by ReadAll when the input exceeds the limit.
var ErrTooLarge = errors.New("input too large")

// InMemReader is an io.Reader whose contents are already in memory.
type InMemReader interface {
	io.Reader

	Bytes() []byte
}

// ReadAll reads everything r contains, up to limit bytes.
//
// Callers *must* not modify bytes in the returned byte slice.
//
// If r is an in-memory representation, ReadAll will attempt to return a
// pointer to those bytes directly.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	if imr, ok := r.(InMemReader); ok {
		b := imr.Bytes()
		if int64(len(b)) > limit {
			return nil, tooLarge(limit)
		}
		return b, nil
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, tooLarge(limit)
	}
	return b, nil
}

func tooLarge(limit int64) error {
	return fmt.Errorf("%w: more than %s", ErrTooLarge, humanize.IBytes(uint64(limit)))
}
