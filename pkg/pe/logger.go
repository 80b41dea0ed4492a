// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pe

import (
	"fmt"
	"log"
	"strings"

	pelog "github.com/saferwall/pe/log"
)

// parserLogger forwards saferwall/pe diagnostics to a standard logger. The
// parser's default logger writes to stdout, which would corrupt the report.
type parserLogger struct {
	l *log.Logger
}

var _ pelog.Logger = parserLogger{}

// Log implements pelog.Logger.
func (p parserLogger) Log(level pelog.Level, keyvals ...interface{}) error {
	if p.l == nil {
		return nil
	}
	p.l.Printf("parser %v: %s", level, joinKeyvals(keyvals))
	return nil
}

func joinKeyvals(keyvals []interface{}) string {
	var b strings.Builder
	for i := 0; i < len(keyvals); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 == len(keyvals) {
			fmt.Fprintf(&b, "%v", keyvals[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", keyvals[i], keyvals[i+1])
	}
	return b.String()
}
