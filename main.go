// Copyright (c) 2025 sparkql
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the sparkql CLI, a terminal client for Apache
// Spark over the Spark Connect protocol.
package main

import (
	"sparkql/client/cmd"
)

func main() {
	cmd.Execute()
}
