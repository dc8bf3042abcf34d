package telnet

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// Codec converts between the server's internal UTF-8 text and the wire
// bytes a particular client's charset expects. Decode is lossy-tolerant:
// bytes that don't map cleanly become U+FFFD rather than failing the
// whole line, since a single bad keystroke shouldn't kill a session.
type Codec interface {
	Encode(s string) []byte
	Decode(b []byte) string
}

// ForEncoding returns the Codec for a session's negotiated charset.
func ForEncoding(e domain.Encoding) Codec {
	switch e {
	case domain.EncodingShiftJIS:
		return textCodec{japanese.ShiftJIS.NewEncoder(), japanese.ShiftJIS.NewDecoder()}
	case domain.EncodingCP437:
		return textCodec{charmap.CodePage437.NewEncoder(), charmap.CodePage437.NewDecoder()}
	case domain.EncodingPETSCII:
		return petsciiCodec{}
	default:
		return utf8Codec{}
	}
}

type utf8Codec struct{}

func (utf8Codec) Encode(s string) []byte { return []byte(s) }
func (utf8Codec) Decode(b []byte) string { return string(b) }

// textCodec wraps an x/text encoding.Encoder/Decoder pair, replacing
// encode/decode failures with the charset's best-effort substitution
// rather than dropping the whole buffer.
type textCodec struct {
	enc *encoding.Encoder
	dec *encoding.Decoder
}

func (c textCodec) Encode(s string) []byte {
	out, err := c.enc.Bytes([]byte(s))
	if err != nil {
		// Fall back to whatever the encoder produced before failing,
		// plus a placeholder so the caller still sees something.
		if out == nil {
			out = []byte("?")
		}
	}
	return out
}

func (c textCodec) Decode(b []byte) string {
	out, err := c.dec.Bytes(b)
	if err != nil {
		if out == nil {
			return string(bytes.Runes(b)) // best-effort, may contain U+FFFD
		}
	}
	return string(out)
}

// StripCSI removes ANSI CSI escape sequences (ESC '[' ... final byte)
// from output, used by the "Plain" output mode for clients that can't
// render color/cursor control.
func StripCSI(p []byte) []byte {
	out := make([]byte, 0, len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == 0x1b && i+1 < len(p) && p[i+1] == '[' {
			i += 2
			for i < len(p) && !isCSIFinal(p[i]) {
				i++
			}
			continue // consumes the final byte too via the outer loop increment
		}
		out = append(out, p[i])
	}
	return out
}

func isCSIFinal(b byte) bool {
	return b >= 0x40 && b <= 0x7e
}

// NormalizeNewlines converts bare LF and CR to CRLF for telnet output,
// and leaves existing CRLF pairs untouched.
func NormalizeNewlines(p []byte) []byte {
	out := make([]byte, 0, len(p)+8)
	for i := 0; i < len(p); i++ {
		b := p[i]
		switch b {
		case '\r':
			out = append(out, '\r', '\n')
			if i+1 < len(p) && p[i+1] == '\n' {
				i++
			}
		case '\n':
			out = append(out, '\r', '\n')
		default:
			out = append(out, b)
		}
	}
	return out
}
