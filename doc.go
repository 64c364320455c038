// Package bytesize provides lossless compression for short natural-language
// strings via static dictionaries.
//
// # Overview
//
// Bytesize targets messages of a few dozen to a few hundred bytes: chat
// text, URLs, log lines. General purpose compressors need more context than
// such messages carry; bytesize instead ships curated dictionaries of common
// English fragments and words, detects numbers and runs of repeated units,
// and packs the result into a dense variable-length code. No training and
// no per-message header are needed.
//
// # Encoding
//
// The input is scanned once, left to right. At every position the first of
// these rules that applies emits a token:
//
//  1. a caller supplied custom word (2 bytes)
//  2. four or more abutting copies of a repetition unit such as "-" or "ha" (3 bytes)
//  3. a canonical decimal number in [1000, 2^66) (3 to 10 bytes)
//  4. the longest dictionary lemma, trying the one-byte, two-byte and
//     three-byte dictionaries in that order at each length (1 to 3 bytes)
//  5. one non-ASCII Unicode scalar value (2 to 5 bytes)
//  6. one ASCII control byte (2 bytes)
//  7. the literal byte (1 byte)
//
// The order is part of the format: the same text always produces the same
// bytes, and changing the order would change them.
//
// A first byte below 224 is a one-byte token. 224 escapes a UTF-8 encoded
// scalar value. Any larger first byte starts a two-byte code that selects a
// partition of a shared code space, possibly followed by a tail.
//
// # Basic Usage
//
//	// Package-level functions use the default custom words
//	compressed := bytesize.Compress("see you at 1830 ❤")
//	text, err := bytesize.Decompress(compressed)
//
//	// Or configure an engine once and share it
//	e := bytesize.EmptyBuilder().
//	    SetCustom([]string{"kubernetes", "namespace"}).
//	    SetCustomSpaces(true).
//	    Engine()
//	compressed = e.Compress("the kubernetes namespace")
//
//	// Suggest custom words from sample messages
//	words := bytesize.TrainCustom(samples, false)
//
// Both sides must use engines with the same custom words and custom space
// setting. Engine.Fingerprint identifies that configuration, and an engine
// can be shipped to a peer with MarshalBinary.
//
// # When NOT to Use Bytesize
//
// Bytesize is not suitable for:
//   - Binary data (use zstd, s2 or another general purpose codec)
//   - Long documents, where general purpose codecs find more redundancy
//   - Text that is not valid UTF-8; invalid bytes are replaced by U+FFFD
//
// # Errors
//
// Compression never fails. Decompression of corrupt or truncated input
// returns a *DecodeError holding the offset of the failing code and one of
// ErrUnexpectedEndOfBytes, ErrInvalidUnicodeScalar, ErrInvalidCode or
// ErrFormat; it never panics.
//
// # Concurrency
//
// Dictionaries are built once on first use. Engines are immutable and may
// be shared by any number of goroutines.
package bytesize
