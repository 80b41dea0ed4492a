// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uflag

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Choice implements pflag.Value for a flag restricted to a fixed set of
// strings.
type Choice struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*Choice)(nil)

// NewChoice returns a Choice set to def. def need not be in allowed, which
// lets callers seed it from the environment and validate with Set later.
func NewChoice(def string, allowed ...string) *Choice {
	return &Choice{value: def, allowed: allowed}
}

// Set implements pflag.Value.Set.
func (c *Choice) Set(value string) error {
	for _, a := range c.allowed {
		if value == a {
			c.value = value
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.allowed, "|"))
}

// String implements pflag.Value.String.
func (c *Choice) String() string {
	return c.value
}

// Type implements pflag.Value.Type.
func (c *Choice) Type() string {
	return strings.Join(c.allowed, "|")
}

// Get returns the current value.
func (c *Choice) Get() interface{} {
	return c.value
}
