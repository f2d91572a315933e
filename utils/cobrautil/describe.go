// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"bytes"
	"fmt"

	"github.com/spf13/pflag"
)

// DescribeFlags returns a name=value line for each flag in the set.
// Flag values parsed with a redacting parser print redacted.
func DescribeFlags(fs *pflag.FlagSet, changedOnly bool) []byte {
	var b bytes.Buffer
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		if changedOnly && !f.Changed {
			return
		}
		fmt.Fprintf(&b, "%s=%s\n", f.Name, f.Value.String())
	})
	return b.Bytes()
}
