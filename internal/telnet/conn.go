package telnet

import (
	"bufio"
	"net"
	"sync"
	"time"
)

// Conn wraps a raw net.Conn with telnet IAC handling. Reads return
// decoded application bytes; negotiation events are delivered to the
// OnNAWS/OnTermType callbacks as they're parsed, so the session layer
// can react without Conn knowing about sessions.
type Conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	decoder *Decoder

	writeMu sync.Mutex

	OnNAWS     func(width, height int)
	OnTermType func(termType string)
}

func NewConn(nc net.Conn) *Conn {
	return &Conn{
		netConn: nc,
		reader:  bufio.NewReaderSize(nc, 512),
		decoder: NewDecoder(),
	}
}

// Negotiate sends the option preamble and drains responses for a short
// window, requesting TERM_TYPE only if the client agreed to send it.
func (c *Conn) Negotiate() error {
	if _, err := c.netConn.Write(NegotiationRequest()); err != nil {
		return err
	}

	willTermType := false
	c.drain(500*time.Millisecond, func(cmd Command) {
		if cmd.Kind == CmdWillTermType {
			willTermType = true
		}
		c.dispatch(cmd)
	})

	if willTermType {
		if _, err := c.netConn.Write(TermTypeRequest()); err != nil {
			return err
		}
		c.drain(500*time.Millisecond, c.dispatch)
	}

	return nil
}

func (c *Conn) drain(window time.Duration, onCmd func(Command)) {
	c.netConn.SetReadDeadline(time.Now().Add(window))
	defer c.netConn.SetReadDeadline(time.Time{})

	buf := make([]byte, 64)
	for {
		n, err := c.reader.Read(buf)
		if n > 0 {
			_, cmds := c.decoder.Decode(buf[:n])
			for _, cmd := range cmds {
				onCmd(cmd)
			}
		}
		if err != nil || c.reader.Buffered() == 0 {
			return
		}
	}
}

func (c *Conn) dispatch(cmd Command) {
	switch cmd.Kind {
	case CmdNAWS:
		if c.OnNAWS != nil {
			c.OnNAWS(cmd.Width, cmd.Height)
		}
	case CmdTermType:
		if c.OnTermType != nil {
			c.OnTermType(cmd.TermType)
		}
	}
}

// ReadByte reads and IAC-decodes a single application byte, blocking
// until one is available. It may consume several wire bytes (and fire
// negotiation callbacks) to produce it.
func (c *Conn) ReadByte() (byte, error) {
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return 0, err
		}
		data, cmds := c.decoder.Decode([]byte{b})
		for _, cmd := range cmds {
			c.dispatch(cmd)
		}
		if len(data) > 0 {
			return data[0], nil
		}
	}
}

// Write sends raw bytes, escaping any literal 0xFF.
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.netConn.Write(EscapeOutput(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Close() error         { return c.netConn.Close() }
func (c *Conn) RemoteAddr() net.Addr { return c.netConn.RemoteAddr() }
func (c *Conn) SetDeadline(t time.Time) error {
	return c.netConn.SetDeadline(t)
}
