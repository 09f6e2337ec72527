package netx

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/resource"
)

// Conn is an open stream connection registered in the resource table.
type Conn struct {
	c      net.Conn
	rid    resource.Rid
	kind   resource.Kind
	table  *resource.Table
	closed atomic.Bool
}

// Rid returns the connection's resource ID.
func (c *Conn) Rid() resource.Rid { return c.rid }

// Kind implements resource.Resource.
func (c *Conn) Kind() resource.Kind { return c.kind }

// LocalAddr returns the local endpoint address.
func (c *Conn) LocalAddr() net.Addr { return c.c.LocalAddr() }

// RemoteAddr returns the remote endpoint address.
func (c *Conn) RemoteAddr() net.Addr { return c.c.RemoteAddr() }

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.c.Read(p)
	if err != nil && !isEOF(err) {
		return n, errs.FromNet("read", c.c.RemoteAddr().String(), err)
	}
	return n, err
}

func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.c.Write(p)
	return n, errs.FromNet("write", c.c.RemoteAddr().String(), err)
}

// CloseWrite shuts down the writing side of the connection.
func (c *Conn) CloseWrite() error {
	type closeWriter interface{ CloseWrite() error }
	if cw, ok := c.c.(closeWriter); ok {
		return errs.FromNet("close_write", c.c.RemoteAddr().String(), cw.CloseWrite())
	}
	return errs.New(errs.NotSupported, "close_write")
}

// SetNoDelay toggles Nagle's algorithm on TCP connections.
func (c *Conn) SetNoDelay(noDelay bool) error {
	tc, ok := c.c.(*net.TCPConn)
	if !ok {
		return errs.New(errs.NotSupported, "set_no_delay")
	}
	return errs.FromNet("set_no_delay", c.c.RemoteAddr().String(), tc.SetNoDelay(noDelay))
}

// SetKeepAlive toggles TCP keep-alive probes.
func (c *Conn) SetKeepAlive(keepAlive bool) error {
	tc, ok := c.c.(*net.TCPConn)
	if !ok {
		return errs.New(errs.NotSupported, "set_keep_alive")
	}
	return errs.FromNet("set_keep_alive", c.c.RemoteAddr().String(), tc.SetKeepAlive(keepAlive))
}

// Close shuts the connection and removes it from the resource table.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return errs.New(errs.BadResource, "close")
	}
	if c.table != nil {
		c.table.Remove(c.rid)
	}
	return errs.FromNet("close", "", c.c.Close())
}

// Listener is an open stream listener registered in the resource table.
type Listener struct {
	l      net.Listener
	rid    resource.Rid
	kind   resource.Kind
	table  *resource.Table
	net    *Net
	closed atomic.Bool
}

// Rid returns the listener's resource ID.
func (l *Listener) Rid() resource.Rid { return l.rid }

// Kind implements resource.Resource.
func (l *Listener) Kind() resource.Kind { return l.kind }

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.l.Addr() }

// Accept waits for the next inbound connection. Context cancellation
// unblocks the wait.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	type deadliner interface{ SetDeadline(time.Time) error }
	if d, ok := l.l.(deadliner); ok {
		stop := context.AfterFunc(ctx, func() {
			d.SetDeadline(time.Now())
		})
		defer func() {
			stop()
			// The poke deadline must not outlive this call or it would
			// fail every later Accept on the listener.
			d.SetDeadline(time.Time{})
		}()
	}

	c, err := l.l.Accept()
	if err != nil {
		if ctxErr := errs.Interruptible(ctx, "accept"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errs.FromNet("accept", l.l.Addr().String(), err)
	}

	connKind := resource.KindTCPConn
	if l.kind == resource.KindUnixListener {
		connKind = resource.KindUnixConn
	}
	return l.net.wrapConn(c, connKind), nil
}

// Close stops the listener and removes it from the resource table.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return errs.New(errs.BadResource, "close")
	}
	if l.table != nil {
		l.table.Remove(l.rid)
	}
	return errs.FromNet("close", l.l.Addr().String(), l.l.Close())
}

// DatagramConn is an open packet endpoint registered in the resource table.
type DatagramConn struct {
	pc        net.PacketConn
	rid       resource.Rid
	kind      resource.Kind
	transport Transport
	table     *resource.Table
	closed    atomic.Bool
}

// Rid returns the endpoint's resource ID.
func (d *DatagramConn) Rid() resource.Rid { return d.rid }

// Kind implements resource.Resource.
func (d *DatagramConn) Kind() resource.Kind { return d.kind }

// Addr returns the bound address.
func (d *DatagramConn) Addr() net.Addr { return d.pc.LocalAddr() }

// Receive reads one datagram into p, returning its length and origin.
func (d *DatagramConn) Receive(p []byte) (int, net.Addr, error) {
	n, addr, err := d.pc.ReadFrom(p)
	if err != nil {
		return n, addr, errs.FromNet("receive", d.pc.LocalAddr().String(), err)
	}
	return n, addr, nil
}

// Send writes one datagram to the destination address.
func (d *DatagramConn) Send(p []byte, addr string) (int, error) {
	dst, resolveErr := d.resolveAddr(addr)
	if resolveErr != nil {
		return 0, resolveErr
	}
	n, err := d.pc.WriteTo(p, dst)
	return n, errs.FromNet("send", addr, err)
}

func (d *DatagramConn) resolveAddr(addr string) (net.Addr, error) {
	switch d.transport {
	case TransportUnixgram:
		return &net.UnixAddr{Name: addr, Net: "unixgram"}, nil
	default:
		udp, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return nil, errs.FromNet("send", addr, err)
		}
		return udp, nil
	}
}

// SetReadDeadline bounds future Receive calls.
func (d *DatagramConn) SetReadDeadline(t time.Time) error {
	return errs.FromNet("set_read_deadline", "", d.pc.SetReadDeadline(t))
}

// Close shuts the endpoint and removes it from the resource table.
func (d *DatagramConn) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return errs.New(errs.BadResource, "close")
	}
	if d.table != nil {
		d.table.Remove(d.rid)
	}
	return errs.FromNet("close", "", d.pc.Close())
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
