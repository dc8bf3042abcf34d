// Package linebuf implements byte-at-a-time line editing for telnet
// sessions: backspace handling, an Enter-terminates-line contract, and
// echo suppression for password entry.
package linebuf

import (
	"unicode/utf8"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/telnet"
)

// EchoMode controls what (if anything) is echoed back to the client as
// it types.
type EchoMode int

const (
	EchoNormal EchoMode = iota
	EchoPassword
	EchoMasked
)

const (
	charBackspace byte = 0x08
	charDelete    byte = 0x7F
	charNUL       byte = 0x00
	charCR        byte = '\r'
	charLF        byte = '\n'
)

// maxPendingBytes bounds how long a not-yet-complete multi-byte sequence
// may grow before it's forced to commit as one (possibly invalid)
// character; 4 covers the longest sequence any negotiated codec here
// (UTF-8) produces for a single rune.
const maxPendingBytes = 4

// Result reports what happened to a single processed byte.
type Result int

const (
	ResultPending Result = iota // byte consumed, line not yet complete
	ResultLine                  // a full line is ready via Buffer.Line()
	ResultIgnored               // byte had no effect (e.g. backspace on empty buffer)
)

// Buffer accumulates raw input bytes into a decoded line, applying
// backspace/delete edits and tracking echo mode. It is not
// concurrency-safe; one Buffer belongs to one session's read loop.
//
// Multi-byte safety: raw holds only fully-committed character bytes;
// charLens records each committed character's byte length (parallel to
// raw) so backspace can drop exactly one character regardless of how
// many bytes it took on the wire. pending holds the bytes of a
// character that hasn't been confirmed complete yet; they only commit
// to raw as one character unit once the sequence is whole.
type Buffer struct {
	raw       []byte
	charLens  []int
	pending   []byte
	echoMode  EchoMode
	maskChar  byte
	codec     telnet.Codec
	maxLength int

	// lastTerm remembers which byte terminated the previous line so the
	// trailing half of a CRLF, LF-CR, or CR NUL pair is swallowed
	// instead of surfacing as an empty line. It must survive Reset and
	// Line: the paired byte arrives at the start of the next read.
	lastTerm byte
}

// New creates a Buffer that decodes raw bytes with codec (selected by
// the session's negotiated domain.Encoding) and caps lines at
// maxLength characters of decoded input.
func New(codec telnet.Codec, maxLength int) *Buffer {
	return &Buffer{codec: codec, maxLength: maxLength}
}

func (b *Buffer) SetEncoding(e domain.Encoding) {
	b.codec = telnet.ForEncoding(e)
}

func (b *Buffer) SetEchoMode(mode EchoMode, maskChar byte) {
	b.echoMode = mode
	b.maskChar = maskChar
}

func (b *Buffer) EchoMode() EchoMode { return b.echoMode }

// ProcessByte feeds one raw input byte to the buffer. It returns the
// outcome for the caller's read loop and the bytes (if any) that should
// be echoed back to the client to reflect this keystroke under the
// current echo mode.
func (b *Buffer) ProcessByte(c byte) (Result, []byte) {
	if prev := b.lastTerm; prev != 0 {
		b.lastTerm = 0
		if (prev == charCR && (c == charLF || c == charNUL)) ||
			(prev == charLF && c == charCR) {
			return ResultIgnored, nil
		}
	}

	switch c {
	case charCR, charLF:
		b.lastTerm = c
		return ResultLine, nil

	case charBackspace, charDelete:
		if len(b.pending) > 0 {
			// An incomplete multi-byte sequence was in flight; drop it
			// entirely rather than surfacing a truncated character.
			b.pending = b.pending[:0]
			return ResultPending, b.backspaceEcho()
		}
		if len(b.charLens) == 0 {
			return ResultIgnored, nil
		}
		last := b.charLens[len(b.charLens)-1]
		b.charLens = b.charLens[:len(b.charLens)-1]
		b.raw = b.raw[:len(b.raw)-last]
		return ResultPending, b.backspaceEcho()

	default:
		b.pending = append(b.pending, c)
		if !b.pendingComplete() {
			return ResultPending, b.charEcho(c)
		}
		if b.maxLength > 0 && len(b.charLens) >= b.maxLength {
			b.pending = b.pending[:0]
			return ResultIgnored, nil
		}
		b.raw = append(b.raw, b.pending...)
		b.charLens = append(b.charLens, len(b.pending))
		b.pending = b.pending[:0]
		return ResultPending, b.charEcho(c)
	}
}

// pendingComplete reports whether b.pending already holds exactly one
// character under the negotiated codec. It decodes pending and checks
// that decoding yielded a single rune that round-trips back to the same
// bytes (the codec's own encode/decode pair is the authority on
// character boundaries, so this works for single-byte codecs like
// CP437/PETSCII and multi-byte ones like ShiftJIS/UTF-8 alike without
// hardcoding per-encoding byte-length tables). A still-incomplete
// sequence decodes to zero runes or to replacement-rune fragments; it is
// forced complete once it reaches maxPendingBytes so garbage input can't
// grow the pending buffer forever.
func (b *Buffer) pendingComplete() bool {
	if len(b.pending) >= maxPendingBytes {
		return true
	}
	decoded := []rune(b.codec.Decode(b.pending))
	if len(decoded) != 1 {
		return false
	}
	if decoded[0] == utf8.RuneError {
		return false
	}
	return string(b.codec.Encode(string(decoded[0]))) == string(b.pending)
}

func (b *Buffer) charEcho(c byte) []byte {
	switch b.echoMode {
	case EchoNormal:
		return []byte{c}
	case EchoPassword:
		return []byte{'*'}
	case EchoMasked:
		return []byte{b.maskChar}
	default:
		return nil
	}
}

// backspaceEcho produces the three-byte sequence (backspace, space,
// backspace) that erases one character cell on the client's terminal,
// used for all echo modes since a masked char occupies one cell too.
func (b *Buffer) backspaceEcho() []byte {
	if b.echoMode == EchoNormal || b.echoMode == EchoPassword || b.echoMode == EchoMasked {
		return []byte{charBackspace, ' ', charBackspace}
	}
	return nil
}

// Line returns the decoded line accumulated so far and resets the
// buffer for the next line. Any still-pending incomplete sequence (the
// client disconnected or sent a terminator mid-character) is discarded.
func (b *Buffer) Line() string {
	s := b.codec.Decode(b.raw)
	b.raw = b.raw[:0]
	b.charLens = b.charLens[:0]
	b.pending = b.pending[:0]
	return s
}

// Reset discards any partial input without decoding it.
func (b *Buffer) Reset() {
	b.raw = b.raw[:0]
	b.charLens = b.charLens[:0]
	b.pending = b.pending[:0]
}
