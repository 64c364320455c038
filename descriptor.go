package bytesize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/axiomhq/bytesize/internal/dict"
)

// descriptorVersion is the engine descriptor format version.
const descriptorVersion uint64 = 20240601

const (
	flagCustomSpaces = 1 << 0
	descriptorFlags  = flagCustomSpaces // every flag bit a reader understands
)

// Limits applied when reading a descriptor, so that a corrupt length cannot
// trigger a huge allocation.
const (
	maxDescriptorWords   = 1 << 12
	maxDescriptorWordLen = 1 << 12
)

// WriteTo serializes the engine configuration to w so that a peer can build
// an engine producing and accepting the same bytes.
// Layout:
// - 8 bytes version word: (version<<32)|(flags<<8)|1, flags bit 0 is custom spaces
// - 8 bytes dictionary fingerprint
// - uvarint number of custom words, then each word as uvarint length and bytes
func (e *Engine) WriteTo(w io.Writer) (int64, error) {
	var flags uint64
	if e.customSpaces {
		flags |= flagCustomSpaces
	}
	buf := make([]byte, 0, 32)
	buf = binary.LittleEndian.AppendUint64(buf, descriptorVersion<<32|flags<<8|1)
	buf = binary.LittleEndian.AppendUint64(buf, e.dicts.Fingerprint())
	buf = binary.AppendUvarint(buf, uint64(len(e.custom)))
	for _, word := range e.custom {
		buf = binary.AppendUvarint(buf, uint64(len(word)))
		buf = append(buf, word...)
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom replaces the engine with the one described by the data read from
// r. It must not be called on an engine that is in use.
func (e *Engine) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	var hdr [16]byte
	if _, err := io.ReadFull(cr, hdr[:]); err != nil {
		return cr.n, err
	}
	ver := binary.LittleEndian.Uint64(hdr[:8])
	flags := (ver >> 8) & 0xffffff
	if ver>>32 != descriptorVersion || ver&0xff != 1 || flags&^descriptorFlags != 0 {
		return cr.n, ErrBadVersion
	}
	spaces := flags&flagCustomSpaces != 0
	b := EmptyBuilder().SetCustomSpaces(spaces)
	if e.log != nil && e.log != discardLogger() {
		b.SetLogger(e.log)
	}
	if binary.LittleEndian.Uint64(hdr[8:]) != dict.Default().Fingerprint() {
		return cr.n, ErrDictionaryMismatch
	}

	count, err := binary.ReadUvarint(cr)
	if err != nil {
		return cr.n, err
	}
	if count > maxDescriptorWords {
		return cr.n, fmt.Errorf("%w: %d custom words", ErrFormat, count)
	}
	for range count {
		size, err := binary.ReadUvarint(cr)
		if err != nil {
			return cr.n, err
		}
		if size > maxDescriptorWordLen {
			return cr.n, fmt.Errorf("%w: custom word of %d bytes", ErrFormat, size)
		}
		word := make([]byte, size)
		if _, err := io.ReadFull(cr, word); err != nil {
			return cr.n, err
		}
		b.PushCustom(string(word))
	}
	*e = *b.Engine()
	return cr.n, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *Engine) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Engine) UnmarshalBinary(data []byte) error {
	_, err := e.ReadFrom(bytes.NewReader(data))
	return err
}

// countingReader counts the bytes read and provides the io.ByteReader
// binary.ReadUvarint needs.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(c, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
