package bytesize

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescriptorRoundTrip(t *testing.T) {
	for _, b := range []*Builder{
		NewBuilder(),
		EmptyBuilder(),
		NewBuilder().SetCustomSpaces(true).PushCustom("ünïcode").PushCustom(""),
	} {
		e := b.Engine()
		data, err := e.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		var e2 Engine
		if err := e2.UnmarshalBinary(data); err != nil {
			t.Fatalf("UnmarshalBinary: %v", err)
		}
		if e.Fingerprint() != e2.Fingerprint() {
			t.Fatalf("fingerprint changed across marshaling")
		}
		if diff := cmp.Diff(e.CustomWords(), e2.CustomWords()); diff != "" {
			t.Fatalf("custom words (-want +got):\n%s", diff)
		}
		if e.CustomSpaces() != e2.CustomSpaces() {
			t.Fatalf("custom spaces changed")
		}
		for _, msg := range loadMessages(t) {
			if !bytes.Equal(e.Compress(msg), e2.Compress(msg)) {
				t.Fatalf("recompressed output mismatch for %q", msg)
			}
		}
	}
}

func TestDescriptorWriteToReadFrom(t *testing.T) {
	e := NewBuilder().Engine()
	var buf bytes.Buffer
	n, err := e.WriteTo(&buf)
	if err != nil || n != int64(buf.Len()) {
		t.Fatalf("WriteTo = %d, %v; buffered %d", n, err, buf.Len())
	}
	buf.WriteString("trailing")
	var e2 Engine
	m, err := e2.ReadFrom(&buf)
	if err != nil || m != n {
		t.Fatalf("ReadFrom = %d, %v; want %d", m, err, n)
	}
	if buf.String() != "trailing" {
		t.Fatalf("ReadFrom consumed past the descriptor")
	}
}

func TestDescriptorErrors(t *testing.T) {
	data, err := NewBuilder().Engine().MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	corrupt := func(fn func(b []byte) []byte) []byte {
		return fn(append([]byte(nil), data...))
	}
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, io.EOF},
		{"short header", data[:10], io.ErrUnexpectedEOF},
		{"bad version", corrupt(func(b []byte) []byte { b[7] ^= 0xff; return b }), ErrBadVersion},
		{"bad marker", corrupt(func(b []byte) []byte { b[0] = 0; return b }), ErrBadVersion},
		{"unknown flag", corrupt(func(b []byte) []byte { b[1] |= 2; return b }), ErrBadVersion},
		{"flag in high byte", corrupt(func(b []byte) []byte { b[3] |= 0x80; return b }), ErrBadVersion},
		{"other dictionaries", corrupt(func(b []byte) []byte { b[8] ^= 0xff; return b }), ErrDictionaryMismatch},
		{"truncated word", data[:len(data)-1], io.ErrUnexpectedEOF},
		{"huge word count", corrupt(func(b []byte) []byte {
			return binary.AppendUvarint(b[:16], 1<<20)
		}), ErrFormat},
		{"huge word", corrupt(func(b []byte) []byte {
			return binary.AppendUvarint(binary.AppendUvarint(b[:16], 1), 1<<20)
		}), ErrFormat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var e Engine
			if err := e.UnmarshalBinary(tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("UnmarshalBinary err = %v, want %v", err, tc.want)
			}
		})
	}
}
