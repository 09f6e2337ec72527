package netx

import (
	"context"
	"net"
	"strconv"

	"github.com/hostlayer/hostshim/errs"
	"github.com/hostlayer/hostshim/metrics"
	"github.com/hostlayer/hostshim/permissions"
	"github.com/hostlayer/hostshim/resource"
)

// Transport selects the socket family for connect and listen calls.
type Transport string

const (
	TransportTCP      Transport = "tcp"
	TransportUDP      Transport = "udp"
	TransportUnix     Transport = "unix"
	TransportUnixgram Transport = "unixgram"
)

// Net is the network surface. Stream and datagram endpoints delegate to
// the net package; TCP/UDP access is gated by the net capability on
// host:port, unix sockets by read and write capability on the path.
type Net struct {
	perms   *permissions.Manager
	table   *resource.Table
	metrics *metrics.Registry
}

// New creates a network surface. reg may be nil to disable op counters.
func New(perms *permissions.Manager, table *resource.Table, reg *metrics.Registry) *Net {
	return &Net{perms: perms, table: table, metrics: reg}
}

func (n *Net) begin(op string) func(error) {
	if n.metrics == nil {
		return func(error) {}
	}
	return n.metrics.Begin(op)
}

// ConnectOptions selects the remote endpoint for Connect.
type ConnectOptions struct {
	Transport Transport // default tcp
	Hostname  string    // tcp: default 127.0.0.1
	Port      int       // tcp
	Path      string    // unix socket path
}

// ListenOptions selects the local endpoint for Listen and ListenDatagram.
type ListenOptions struct {
	Transport Transport // default tcp (udp for ListenDatagram)
	Hostname  string    // tcp/udp: default 0.0.0.0
	Port      int       // tcp/udp
	Path      string    // unix socket path
}

func joinAddr(hostname string, port int, fallback string) string {
	if hostname == "" {
		hostname = fallback
	}
	return net.JoinHostPort(hostname, strconv.Itoa(port))
}

func (n *Net) checkInet(op, addr string) error {
	return n.perms.Check(permissions.NetHost(addr), op)
}

func (n *Net) checkUnix(op, path string) error {
	if err := n.perms.Check(permissions.ReadPath(path), op); err != nil {
		return err
	}
	return n.perms.Check(permissions.WritePath(path), op)
}

// Connect opens a stream connection to the remote endpoint.
func (n *Net) Connect(ctx context.Context, opts ConnectOptions) (conn *Conn, err error) {
	done := n.begin("connect")
	defer func() { done(err) }()

	transport := opts.Transport
	if transport == "" {
		transport = TransportTCP
	}

	var addr string
	var kind resource.Kind
	switch transport {
	case TransportTCP:
		addr = joinAddr(opts.Hostname, opts.Port, "127.0.0.1")
		kind = resource.KindTCPConn
		if err = n.checkInet("connect", addr); err != nil {
			return nil, err
		}
	case TransportUnix:
		addr = opts.Path
		kind = resource.KindUnixConn
		if err = n.checkUnix("connect", addr); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.NotSupported, "connect").
			WithDetail("transport " + string(transport))
	}

	var d net.Dialer
	c, dialErr := d.DialContext(ctx, string(transport), addr)
	if dialErr != nil {
		return nil, errs.FromNet("connect", addr, dialErr)
	}
	return n.wrapConn(c, kind), nil
}

// Listen announces a stream listener on the local endpoint.
func (n *Net) Listen(opts ListenOptions) (ln *Listener, err error) {
	done := n.begin("listen")
	defer func() { done(err) }()

	transport := opts.Transport
	if transport == "" {
		transport = TransportTCP
	}

	var addr string
	var kind resource.Kind
	switch transport {
	case TransportTCP:
		addr = joinAddr(opts.Hostname, opts.Port, "0.0.0.0")
		kind = resource.KindTCPListener
		if err = n.checkInet("listen", addr); err != nil {
			return nil, err
		}
	case TransportUnix:
		addr = opts.Path
		kind = resource.KindUnixListener
		if err = n.checkUnix("listen", addr); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.NotSupported, "listen").
			WithDetail("transport " + string(transport))
	}

	l, listenErr := net.Listen(string(transport), addr)
	if listenErr != nil {
		return nil, errs.FromNet("listen", addr, listenErr)
	}

	ln = &Listener{l: l, kind: kind, table: n.table, net: n}
	if n.table != nil {
		ln.rid = n.table.Add(ln)
	}
	return ln, nil
}

// ListenDatagram opens a packet endpoint on the local address.
func (n *Net) ListenDatagram(opts ListenOptions) (dc *DatagramConn, err error) {
	done := n.begin("listen_datagram")
	defer func() { done(err) }()

	transport := opts.Transport
	if transport == "" {
		transport = TransportUDP
	}

	var addr string
	var kind resource.Kind
	switch transport {
	case TransportUDP:
		addr = joinAddr(opts.Hostname, opts.Port, "0.0.0.0")
		kind = resource.KindUDPConn
		if err = n.checkInet("listen_datagram", addr); err != nil {
			return nil, err
		}
	case TransportUnixgram:
		addr = opts.Path
		kind = resource.KindUnixDatagram
		if err = n.checkUnix("listen_datagram", addr); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.NotSupported, "listen_datagram").
			WithDetail("transport " + string(transport))
	}

	pc, listenErr := net.ListenPacket(string(transport), addr)
	if listenErr != nil {
		return nil, errs.FromNet("listen_datagram", addr, listenErr)
	}

	dc = &DatagramConn{pc: pc, kind: kind, table: n.table, transport: transport}
	if n.table != nil {
		dc.rid = n.table.Add(dc)
	}
	return dc, nil
}

func (n *Net) wrapConn(c net.Conn, kind resource.Kind) *Conn {
	conn := &Conn{c: c, kind: kind, table: n.table}
	if n.table != nil {
		conn.rid = n.table.Add(conn)
	}
	return conn
}
