// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the transcript
// binary.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a params struct whose tagged fields
// become flags, and a Run function. [Command.Execute] handles flag
// parsing, subcommand routing, and help output with examples.
//
// Flags are declared as struct tags and bound by [FlagsFromParams]:
//
//	type renderParams struct {
//	    cli.LogParams
//	    Title string `flag:"title" desc:"document title"`
//	}
//
// When a user types an unknown subcommand or flag, the framework
// suggests the closest known name by Levenshtein distance (threshold:
// distance <= 3).
//
// Run receives a logger from [NewCommandLogger], scoped with the
// command path and raised to debug level when the params embed
// [LogParams] and --verbose is set.
package cli
