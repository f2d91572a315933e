// Copyright 2025 301.st, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package version

// These variables are set at build time via ldflags.
var (
	Version = "devel"
	Time    = "unknown"
	Commit  = "unknown"
)
