package linebuf

import (
	"testing"

	"github.com/hobbs-bbs/hobbs/internal/telnet"
)

func newBuf() *Buffer {
	return New(telnet.ForEncoding(0), 0)
}

func feed(b *Buffer, s string) {
	for _, c := range []byte(s) {
		b.ProcessByte(c)
	}
}

func TestBasicLine(t *testing.T) {
	b := newBuf()
	feed(b, "hello")
	res, _ := b.ProcessByte('\r')
	if res != ResultLine {
		t.Fatalf("result = %v, want ResultLine", res)
	}
	if got := b.Line(); got != "hello" {
		t.Fatalf("line = %q, want hello", got)
	}
}

func TestBackspaceEditsLine(t *testing.T) {
	b := newBuf()
	feed(b, "helloo")
	b.ProcessByte(charBackspace)
	b.ProcessByte('\n')
	if got := b.Line(); got != "hello" {
		t.Fatalf("line = %q, want hello", got)
	}
}

func TestBackspaceOnMultiByteUTF8RemovesWholeCharacter(t *testing.T) {
	b := newBuf()
	feed(b, "hello")
	feed(b, "こ") // U+3053 HIRAGANA LETTER KO, 3 UTF-8 bytes
	b.ProcessByte(charBackspace)
	b.ProcessByte('\n')
	if got := b.Line(); got != "hello" {
		t.Fatalf("line = %q, want hello (multi-byte char should be removed as one unit)", got)
	}
}

func TestBackspaceOnMultiByteShiftJISRemovesWholeCharacter(t *testing.T) {
	codec := telnet.ForEncoding(1) // domain.EncodingShiftJIS
	b := New(codec, 0)
	kana := codec.Encode("こ") // 2 ShiftJIS bytes
	feed(b, "ab")
	for _, c := range kana {
		b.ProcessByte(c)
	}
	b.ProcessByte(charBackspace)
	b.ProcessByte('\n')
	if got := b.Line(); got != "ab" {
		t.Fatalf("line = %q, want ab (ShiftJIS character should be removed as one unit, not one byte)", got)
	}
}

func TestBackspaceDuringIncompleteMultiByteSequenceDiscardsPending(t *testing.T) {
	codec := telnet.ForEncoding(1) // domain.EncodingShiftJIS
	b := New(codec, 0)
	kana := codec.Encode("こ")
	feed(b, "ab")
	b.ProcessByte(kana[0]) // only the lead byte of a two-byte character
	b.ProcessByte(charBackspace)
	b.ProcessByte('\n')
	if got := b.Line(); got != "ab" {
		t.Fatalf("line = %q, want ab (backspace on an incomplete sequence should discard it, not corrupt the line)", got)
	}
}

func TestBackspaceOnEmptyIgnored(t *testing.T) {
	b := newBuf()
	res, echo := b.ProcessByte(charBackspace)
	if res != ResultIgnored {
		t.Fatalf("result = %v, want ResultIgnored", res)
	}
	if echo != nil {
		t.Fatalf("expected no echo for ignored backspace, got %v", echo)
	}
}

func TestPasswordModeEchoesAsterisk(t *testing.T) {
	b := newBuf()
	b.SetEchoMode(EchoPassword, 0)
	_, echo := b.ProcessByte('x')
	if string(echo) != "*" {
		t.Fatalf("echo = %q, want *", echo)
	}
}

func TestMaxLengthRejectsExcessBytes(t *testing.T) {
	b := New(telnet.ForEncoding(0), 3)
	feed(b, "abc")
	res, _ := b.ProcessByte('d')
	if res != ResultIgnored {
		t.Fatalf("result = %v, want ResultIgnored past max length", res)
	}
	b.ProcessByte('\n')
	if got := b.Line(); got != "abc" {
		t.Fatalf("line = %q, want abc", got)
	}
}

func TestCRLFPairYieldsOneLineNotTwo(t *testing.T) {
	b := newBuf()
	feed(b, "foo")
	if res, _ := b.ProcessByte('\r'); res != ResultLine {
		t.Fatalf("result = %v, want ResultLine on CR", res)
	}
	if got := b.Line(); got != "foo" {
		t.Fatalf("line = %q, want foo", got)
	}
	if res, _ := b.ProcessByte('\n'); res == ResultLine {
		t.Fatal("the LF of a CRLF pair must be swallowed, not surface as an empty line")
	}
	feed(b, "bar")
	b.ProcessByte('\r')
	if got := b.Line(); got != "bar" {
		t.Fatalf("next line = %q, want bar (paired LF must not bleed into it)", got)
	}
}

func TestLFCRPairYieldsOneLine(t *testing.T) {
	b := newBuf()
	feed(b, "foo")
	if res, _ := b.ProcessByte('\n'); res != ResultLine {
		t.Fatalf("result = %v, want ResultLine on LF", res)
	}
	b.Line()
	if res, _ := b.ProcessByte('\r'); res == ResultLine {
		t.Fatal("the CR of an LF-CR pair must be swallowed")
	}
}

func TestCRNULPairYieldsOneLine(t *testing.T) {
	b := newBuf()
	feed(b, "foo")
	b.ProcessByte('\r')
	b.Line()
	if res, _ := b.ProcessByte(0x00); res == ResultLine {
		t.Fatal("the NUL of a CR NUL pair must be swallowed")
	}
}

func TestConsecutiveBareCRsYieldEmptyLines(t *testing.T) {
	b := newBuf()
	feed(b, "a")
	b.ProcessByte('\r')
	if got := b.Line(); got != "a" {
		t.Fatalf("first line = %q, want a", got)
	}
	if res, _ := b.ProcessByte('\r'); res != ResultLine {
		t.Fatal("a second bare CR is its own terminator, not a pair")
	}
	if got := b.Line(); got != "" {
		t.Fatalf("second line = %q, want empty", got)
	}
}

func TestLineResetsBuffer(t *testing.T) {
	b := newBuf()
	feed(b, "first")
	b.ProcessByte('\r')
	b.Line()
	feed(b, "second")
	b.ProcessByte('\r')
	if got := b.Line(); got != "second" {
		t.Fatalf("line = %q, want second (buffer should reset)", got)
	}
}
