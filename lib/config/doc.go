// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the transcript tool's configuration file.
//
// Configuration comes from a single file named either by the
// TRANSCRIPT_CONFIG environment variable (via [Load]) or by a --config
// flag (via [LoadFile]). There is no discovery and no search path: a
// command run without either uses [Default] and nothing else.
//
// Files are YAML. Files ending in .json or .jsonc are read as JSON with
// comments and trailing commas, which is a subset of what the YAML
// decoder accepts once the comments are stripped.
//
// The file holds three things:
//
//   - default render options, applied to every render
//   - named presets that override some of those options; the built-in
//     presets "condensed" and "full" are always available and may be
//     redefined by the file
//   - phrase overrides for the classifiers (see [transcript.Phrases])
//
// Path values support ${HOME} and ${VAR:-default} expansion.
package config
