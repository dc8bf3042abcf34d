// Package screen implements the screen navigator state machine and the
// per-state screen handlers that drive a HOBBS session after Telnet
// negotiation: welcome/auth, boards, mail, files, news, chat, profile,
// scripts and admin, each a plain function from (context, session) to
// a ScreenResult.
package screen

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
	"github.com/hobbs-bbs/hobbs/internal/linebuf"
	"github.com/hobbs-bbs/hobbs/internal/telnet"
)

// Transport is the minimal byte-level contract IO needs from a
// connection; *telnet.Conn satisfies it, and tests supply an in-memory
// double over a bufio.Reader/bytes.Buffer pair.
type Transport interface {
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
	SetDeadline(t time.Time) error
}

// IO bundles a Transport with the line buffer and charset codec that
// together implement line-oriented reads and writes for one session.
// It is owned exclusively by its session's worker.
type IO struct {
	transport Transport
	buf       *linebuf.Buffer
	codec     telnet.Codec
	plain     bool
}

// NewIO builds an IO over transport, starting in UTF-8/Ansi/Normal-echo
// mode; SetEncoding/SetPlain switch it later when the session's
// settings change.
func NewIO(transport Transport) *IO {
	codec := telnet.ForEncoding(domain.EncodingUTF8)
	return &IO{
		transport: transport,
		buf:       linebuf.New(codec, 1024),
		codec:     codec,
	}
}

// SetEncoding reconfigures both the outbound codec and the line
// buffer's decode codec, used on language selection, login, and
// SettingsChanged.
func (io_ *IO) SetEncoding(e domain.Encoding) {
	io_.codec = telnet.ForEncoding(e)
	io_.buf.SetEncoding(e)
}

// SetPlain toggles CSI stripping on outbound data for OutputPlain
// sessions.
func (io_ *IO) SetPlain(plain bool) {
	io_.plain = plain
}

// SetEchoMode switches the line buffer's echo policy, used around
// password/masked prompts.
func (io_ *IO) SetEchoMode(mode linebuf.EchoMode, maskChar byte) {
	io_.buf.SetEchoMode(mode, maskChar)
}

// Send writes s to the client: LF is normalized to CRLF, CSI sequences
// are stripped when the session is in Plain output mode, and the result
// is encoded with the session's negotiated charset.
func (io_ *IO) Send(s string) error {
	out := []byte(s)
	out = telnet.NormalizeNewlines(out)
	if io_.plain {
		out = telnet.StripCSI(out)
	}
	_, err := io_.transport.Write(io_.codec.Encode(string(out)))
	if err != nil {
		return hobbserrors.Io("write", err)
	}
	return nil
}

// SendLine writes s followed by a line terminator.
func (io_ *IO) SendLine(s string) error {
	return io_.Send(s + "\n")
}

// Printf is a convenience wrapper over Send.
func (io_ *IO) Printf(format string, args ...any) error {
	return io_.Send(fmt.Sprintf(format, args...))
}

// ReadLine reads bytes from the transport until a full line is
// assembled, echoing per the buffer's current echo mode and honoring
// deadline as the per-read timeout. Returns hobbserrors.ErrIo on any
// transport failure or deadline expiry, which ends the calling worker.
func (io_ *IO) ReadLine(ctx context.Context, deadline time.Duration) (string, error) {
	if err := io_.transport.SetDeadline(time.Now().Add(deadline)); err != nil {
		return "", hobbserrors.Io("set deadline", err)
	}
	defer io_.transport.SetDeadline(time.Time{})

	io_.buf.Reset()
	for {
		select {
		case <-ctx.Done():
			return "", hobbserrors.Io("read", ctx.Err())
		default:
		}

		b, err := io_.transport.ReadByte()
		if err != nil {
			return "", hobbserrors.Io("read", err)
		}

		result, echo := io_.buf.ProcessByte(b)
		if len(echo) > 0 {
			if _, werr := io_.transport.Write(echo); werr != nil {
				return "", hobbserrors.Io("write echo", werr)
			}
		}
		if result == linebuf.ResultLine {
			if werr := io_.Send("\n"); werr != nil {
				return "", werr
			}
			return io_.buf.Line(), nil
		}
	}
}

// bufferedTransport adapts any io.Reader/io.Writer pair (e.g. an
// in-memory pipe used by tests) into the byte-at-a-time Transport
// contract by wrapping the reader in a bufio.Reader. Deadlines are a
// no-op since test doubles don't need to honor them.
type bufferedTransport struct {
	r *bufio.Reader
	w interface {
		Write([]byte) (int, error)
	}
}

func (t *bufferedTransport) ReadByte() (byte, error)     { return t.r.ReadByte() }
func (t *bufferedTransport) Write(p []byte) (int, error) { return t.w.Write(p) }
func (t *bufferedTransport) SetDeadline(time.Time) error { return nil }

// NewBufferedTransport builds a Transport over r/w for use in tests
// that exercise ScreenContext/IO without a real socket.
func NewBufferedTransport(r interface {
	Read([]byte) (int, error)
}, w interface {
	Write([]byte) (int, error)
}) Transport {
	return &bufferedTransport{r: bufio.NewReader(r), w: w}
}
