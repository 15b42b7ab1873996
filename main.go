// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/wastewise/wastewise/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
