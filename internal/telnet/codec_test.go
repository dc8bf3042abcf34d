package telnet

import (
	"bytes"
	"testing"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

func TestDecodeStripsIAC(t *testing.T) {
	d := NewDecoder()
	in := []byte{'h', 'i', IAC, WILL, OptSGA, '!', '\n'}
	data, cmds := d.Decode(in)
	if string(data) != "hi!\n" {
		t.Fatalf("data = %q, want %q", data, "hi!\n")
	}
	if len(cmds) != 0 {
		t.Fatalf("expected no commands for a plain WILL SGA, got %v", cmds)
	}
}

func TestDecodeEscapedFF(t *testing.T) {
	d := NewDecoder()
	data, _ := d.Decode([]byte{'a', IAC, IAC, 'b'})
	if !bytes.Equal(data, []byte{'a', 0xFF, 'b'}) {
		t.Fatalf("data = %v, want literal 0xFF preserved", data)
	}
}

func TestDecodeAcrossChunks(t *testing.T) {
	d := NewDecoder()
	data1, _ := d.Decode([]byte{'x', IAC})
	data2, cmds := d.Decode([]byte{WILL, OptTermType, 'y'})
	if string(data1)+string(data2) != "xy" {
		t.Fatalf("data across chunks = %q+%q, want xy", data1, data2)
	}
	if len(cmds) != 1 || cmds[0].Kind != CmdWillTermType {
		t.Fatalf("expected a WillTermType command, got %v", cmds)
	}
}

func TestDecodeNAWS(t *testing.T) {
	d := NewDecoder()
	in := []byte{IAC, SB, OptNAWS, 0, 80, 0, 24, IAC, SE}
	_, cmds := d.Decode(in)
	if len(cmds) != 1 || cmds[0].Kind != CmdNAWS {
		t.Fatalf("expected one NAWS command, got %v", cmds)
	}
	if cmds[0].Width != 80 || cmds[0].Height != 24 {
		t.Fatalf("NAWS = %dx%d, want 80x24", cmds[0].Width, cmds[0].Height)
	}
}

func TestDecodeTermType(t *testing.T) {
	d := NewDecoder()
	in := append([]byte{IAC, SB, OptTermType, TermTypeIs}, []byte("ANSI")...)
	in = append(in, IAC, SE)
	_, cmds := d.Decode(in)
	if len(cmds) != 1 || cmds[0].Kind != CmdTermType || cmds[0].TermType != "ANSI" {
		t.Fatalf("expected TermType=ANSI command, got %v", cmds)
	}
}

func TestEscapeOutputRoundTrip(t *testing.T) {
	orig := []byte("pre\xFFpost")
	escaped := EscapeOutput(orig)
	d := NewDecoder()
	data, _ := d.Decode(escaped)
	if !bytes.Equal(data, orig) {
		t.Fatalf("round trip = %v, want %v", data, orig)
	}
}

func TestStripCSI(t *testing.T) {
	in := []byte("\x1b[31mred\x1b[0m plain")
	out := StripCSI(in)
	if string(out) != "red plain" {
		t.Fatalf("StripCSI = %q, want %q", out, "red plain")
	}
}

func TestNormalizeNewlines(t *testing.T) {
	in := []byte("a\nb\r\nc\r")
	out := NormalizeNewlines(in)
	if string(out) != "a\r\nb\r\nc\r\n" {
		t.Fatalf("NormalizeNewlines = %q", out)
	}
}

func TestCodecRoundTripUTF8(t *testing.T) {
	c := ForEncoding(domain.EncodingUTF8)
	s := "hello world"
	if c.Decode(c.Encode(s)) != s {
		t.Fatalf("UTF8 round trip failed")
	}
}

func TestCodecRoundTripCP437(t *testing.T) {
	c := ForEncoding(domain.EncodingCP437)
	s := "Hello, SysOp!"
	if got := c.Decode(c.Encode(s)); got != s {
		t.Fatalf("CP437 round trip = %q, want %q", got, s)
	}
}

func TestCodecRoundTripPETSCII(t *testing.T) {
	c := ForEncoding(domain.EncodingPETSCII)
	s := "Hello, SysOp! abc XYZ 123"
	if got := c.Decode(c.Encode(s)); got != s {
		t.Fatalf("PETSCII round trip = %q, want %q", got, s)
	}
}

func TestPETSCIIUnrepresentableEncodesAsPlaceholder(t *testing.T) {
	c := ForEncoding(domain.EncodingPETSCII)
	out := c.Encode("こ")
	if string(out) != "?" {
		t.Fatalf("PETSCII encode of unrepresentable char = %q, want ?", out)
	}
}
