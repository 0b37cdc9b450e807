// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a log stream is encoded on disk.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionGzip Compression = "gzip"
	CompressionLZ4  Compression = "lz4"
)

// Frame magic numbers. Session logs are plain text JSON, so none of
// these can collide with an uncompressed log (which starts with '{'
// or whitespace).
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// ReadFile opens the log at path and reads every entry. The only
// error it returns is a failure to open or read the file; malformed
// lines are reported as error entries instead.
func ReadFile(path string) ([]*Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	defer file.Close()

	entries, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading session log %q: %w", path, err)
	}
	return entries, nil
}

// Read parses a log stream into entries, one per non-blank line, in
// source order. Compressed streams are detected by their magic bytes
// and decoded on the fly.
func Read(reader io.Reader) ([]*Entry, error) {
	decoded, closer, _, err := decompress(reader)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer()
	}

	// bufio.Reader rather than bufio.Scanner: tool results embed whole
	// files and images, so a single line can be many megabytes and a
	// Scanner would abort the read with ErrTooLong.
	buffered := bufio.NewReaderSize(decoded, 256*1024)

	var entries []*Entry
	lineNumber := 0
	for {
		line, readErr := buffered.ReadBytes('\n')
		if len(line) > 0 {
			lineNumber++
			if len(bytes.TrimSpace(line)) > 0 {
				entries = append(entries, newEntry(line, len(entries), lineNumber))
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return entries, nil
			}
			return entries, readErr
		}
	}
}

func newEntry(line []byte, index, lineNumber int) *Entry {
	entry, err := parseEntry(line)
	if err != nil {
		return &Entry{
			Index:      index,
			Line:       lineNumber,
			ParseError: fmt.Sprintf("line %d: %v", lineNumber, err),
		}
	}
	entry.Index = index
	entry.Line = lineNumber
	return &entry
}

// DetectCompression reports the encoding of a stream from its first
// bytes.
func DetectCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// decompress wraps reader in the decoder matching its magic bytes.
// The returned closer (possibly nil) releases decoder resources.
func decompress(reader io.Reader) (io.Reader, func(), Compression, error) {
	buffered := bufio.NewReader(reader)
	header, err := buffered.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, CompressionNone, err
	}

	compression := DetectCompression(header)
	switch compression {
	case CompressionZstd:
		decoder, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, nil, compression, fmt.Errorf("zstd: %w", err)
		}
		return decoder, decoder.Close, compression, nil

	case CompressionGzip:
		decoder, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, nil, compression, fmt.Errorf("gzip: %w", err)
		}
		return decoder, func() { decoder.Close() }, compression, nil

	case CompressionLZ4:
		return lz4.NewReader(buffered), nil, compression, nil

	default:
		return buffered, nil, compression, nil
	}
}
