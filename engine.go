package bytesize

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"github.com/dchest/siphash"
	"github.com/sirupsen/logrus"

	"github.com/axiomhq/bytesize/internal/dict"
)

// DefaultCustomWords is the custom word list of NewBuilder.
var DefaultCustomWords = []string{
	"http://",
	"https://",
	".com",
	"\n\r\n",
	"\r\n\r",
	`C:\`,
	".co.uk",
}

// Keys for Engine.Fingerprint.
const (
	engineKey0 = 0x656e67696e652d30 // "engine-0"
	engineKey1 = 0x637573746f6d7321 // "customs!"
)

// Builder collects the configuration of an Engine. The zero value is not
// usable; start from NewBuilder or EmptyBuilder. Setters return the
// receiver so calls can be chained.
type Builder struct {
	custom       []string
	customSpaces bool
	log          *logrus.Logger
}

// NewBuilder returns a builder preloaded with DefaultCustomWords and with
// custom spaces disabled.
func NewBuilder() *Builder {
	return EmptyBuilder().SetCustom(DefaultCustomWords)
}

// EmptyBuilder returns a builder without custom words.
func EmptyBuilder() *Builder {
	return &Builder{}
}

// SetCustom replaces the custom word list with a copy of words.
func (b *Builder) SetCustom(words []string) *Builder {
	b.custom = append(b.custom[:0:0], words...)
	return b
}

// PushCustom appends one custom word.
func (b *Builder) PushCustom(word string) *Builder {
	b.custom = append(b.custom, word)
	return b
}

// ClearCustom removes every custom word.
func (b *Builder) ClearCustom() *Builder {
	b.custom = nil
	return b
}

// LenCustom returns the number of configured custom words, including the
// ones beyond the capacity of the engine.
func (b *Builder) LenCustom() int { return len(b.custom) }

// SetCustomSpaces lets every custom word also match with a leading space.
// This halves the custom word capacity from 32 to 16.
func (b *Builder) SetCustomSpaces(on bool) *Builder {
	b.customSpaces = on
	return b
}

// SetLogger attaches a logger to the engines built afterwards. Without one
// the engine logs nothing.
func (b *Builder) SetLogger(l *logrus.Logger) *Builder {
	b.log = l
	return b
}

// Engine builds an immutable engine from the current configuration. Custom
// words beyond the capacity are kept but never used by the tokenizer.
func (b *Builder) Engine() *Engine {
	log := b.log
	if log == nil {
		log = discardLogger()
	}
	d := dict.Default()
	l, err := defaultLayout(b.customSpaces)
	if err != nil {
		panic(err)
	}
	e := &Engine{
		custom:       append([]string(nil), b.custom...),
		customSpaces: b.customSpaces,
		dicts:        d,
		layout:       l,
		sweep:        defaultSweep(),
		log:          log,
	}
	e.words = dict.Words(e.custom[:min(len(e.custom), e.CustomCapacity())])
	if len(e.custom) > len(e.words) {
		log.WithFields(logrus.Fields{
			"configured": len(e.custom),
			"capacity":   len(e.words),
			"ignored":    e.custom[len(e.words):],
		}).Warn("bytesize: custom words beyond capacity are ignored")
	}
	e.fingerprint = e.computeFingerprint()
	return e
}

var (
	defaultSweep = sync.OnceValue(func() []sweepLevel { return newSweep(dict.Default()) })

	defaultLayouts = sync.OnceValues(func() ([2]*layout, error) {
		var ls [2]*layout
		for i, spaces := range []bool{false, true} {
			l, err := newLayout(dict.Default(), spaces)
			if err != nil {
				return ls, err
			}
			ls[i] = l
		}
		return ls, nil
	})

	discardLogger = sync.OnceValue(func() *logrus.Logger {
		l := logrus.New()
		l.SetOutput(io.Discard)
		l.SetLevel(logrus.PanicLevel)
		return l
	})

	defaultEngine = sync.OnceValue(func() *Engine { return NewBuilder().Engine() })
)

func defaultLayout(customSpaces bool) (*layout, error) {
	ls, err := defaultLayouts()
	if err != nil {
		return nil, err
	}
	if customSpaces {
		return ls[1], nil
	}
	return ls[0], nil
}

// Engine compresses and decompresses short strings. An Engine is immutable
// and safe for concurrent use. Both sides of an exchange must use engines
// with the same custom words and custom space setting; compare Fingerprint
// to check.
type Engine struct {
	custom       []string
	words        dict.Words // custom words the tokenizer uses
	customSpaces bool

	dicts  *dict.Set
	layout *layout
	sweep  []sweepLevel

	log         *logrus.Logger
	fingerprint uint64
}

// Compress returns the compressed form of s.
func Compress(s string) []byte { return defaultEngine().Compress(s) }

// Decompress reverses Compress.
func Decompress(src []byte) (string, error) { return defaultEngine().Decompress(src) }

// Compress returns the compressed form of s.
func (e *Engine) Compress(s string) []byte {
	return e.AppendCompress(make([]byte, 0, len(s)), s)
}

// AppendCompress appends the compressed form of s to dst and returns the
// extended buffer.
func (e *Engine) AppendCompress(dst []byte, s string) []byte {
	trace := e.log.IsLevelEnabled(logrus.TraceLevel)
	z := newTokenizer(e, unsafe.Slice(unsafe.StringData(s), len(s)))
	for {
		t, covered, ok := z.next()
		if !ok {
			return dst
		}
		before := len(dst)
		dst = e.layout.appendToken(dst, t)
		if debugChecks && len(dst)-before != t.EncodedLen() {
			panic(fmt.Sprintf("bytesize: %v wrote %d bytes, EncodedLen is %d", t, len(dst)-before, t.EncodedLen()))
		}
		if trace {
			e.log.WithFields(logrus.Fields{
				"token": t.String(),
				"input": string(covered),
				"bytes": len(dst) - before,
			}).Trace("bytesize: token")
		}
	}
}

// Decompress reverses Compress. Corrupt or truncated input returns a
// *DecodeError wrapping one of the sentinel errors.
func (e *Engine) Decompress(src []byte) (string, error) {
	out, err := e.AppendDecompress(make([]byte, 0, 2*len(src)), src)
	if err != nil {
		return "", err
	}
	return unsafe.String(unsafe.SliceData(out), len(out)), nil
}

// AppendDecompress appends the text encoded in src to dst. On error dst is
// returned unchanged; there is no partial output.
func (e *Engine) AppendDecompress(dst, src []byte) ([]byte, error) {
	start := len(dst)
	for off := 0; off < len(src); {
		t, n, err := e.layout.decodeToken(src[off:])
		if err == nil {
			dst, err = t.appendText(dst, e.dicts, e.words)
		}
		if err != nil {
			e.log.WithFields(logrus.Fields{
				"offset": off,
				"length": len(src),
			}).WithError(err).Debug("bytesize: decompress failed")
			return dst[:start], &DecodeError{Offset: off, Err: err}
		}
		off += n
	}
	return dst, nil
}

// Tokens returns the tokens s is compressed into.
func (e *Engine) Tokens(s string) []Token {
	var out []Token
	e.Scan(s, func(t Token, _ string) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Scan calls fn for every token of s in order, together with the part of s
// the token covers. Scanning stops early when fn returns false.
func (e *Engine) Scan(s string, fn func(t Token, covered string) bool) {
	z := newTokenizer(e, unsafe.Slice(unsafe.StringData(s), len(s)))
	for off := 0; ; {
		t, covered, ok := z.next()
		if !ok {
			return
		}
		if !fn(t, s[off:off+len(covered)]) {
			return
		}
		off += len(covered)
	}
}

// DecodeTokens parses src into tokens without expanding them to text.
func (e *Engine) DecodeTokens(src []byte) ([]Token, error) {
	var out []Token
	for off := 0; off < len(src); {
		t, n, err := e.layout.decodeToken(src[off:])
		if err != nil {
			return nil, &DecodeError{Offset: off, Err: err}
		}
		out = append(out, t)
		off += n
	}
	return out, nil
}

// Text returns the text t stands for under this engine's configuration.
func (e *Engine) Text(t Token) (string, error) {
	b, err := t.appendText(nil, e.dicts, e.words)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CustomWords returns a copy of the configured custom words, including the
// ones beyond CustomCapacity.
func (e *Engine) CustomWords() []string {
	return append([]string(nil), e.custom...)
}

// CustomCapacity returns how many custom words the tokenizer can use.
func (e *Engine) CustomCapacity() int {
	if e.customSpaces {
		return customHalf
	}
	return customCodes
}

// CustomSpaces reports whether custom words also match with a leading space.
func (e *Engine) CustomSpaces() bool { return e.customSpaces }

// Fingerprint identifies everything that affects the compressed bytes: the
// dictionaries, the usable custom words and the custom space setting.
// Engines with equal fingerprints produce and accept the same bytes.
func (e *Engine) Fingerprint() uint64 { return e.fingerprint }

func (e *Engine) computeFingerprint() uint64 {
	buf := make([]byte, 0, 64)
	buf = binary.LittleEndian.AppendUint64(buf, e.dicts.Fingerprint())
	if e.customSpaces {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	for _, w := range e.words {
		buf = binary.AppendUvarint(buf, uint64(len(w)))
		buf = append(buf, w...)
	}
	return siphash.Hash(engineKey0, engineKey1, buf)
}
