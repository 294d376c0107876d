//go:build unix

package async

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// TCPServer is a listening socket that hands accepted connections to an
// accept callback as StreamHandles.
type TCPServer struct {
	mgr      *Manager
	fd       int
	poll     *PollHandle
	acceptCb func(*StreamHandle, interface{})
	client   interface{}
	nodelay  bool
}

// InitTcpServer opens a listening TCP socket on host:port with the given
// backlog and registers it with the reactor; each accepted connection is
// delivered to acceptCb as a StreamHandle. nodelay disables Nagle's
// algorithm on accepted sockets, useful for the GDB RSP stream where
// request/response latency matters more than packing.
func (m *Manager) InitTcpServer(host string, port int, backlog int, nodelay bool, acceptCb func(*StreamHandle, interface{}), client interface{}) (*TCPServer, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("async: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("async: setsockopt SO_REUSEADDR: %w", err)
	}
	addr := unix.SockaddrInet4{Port: port}
	if ip, err := resolveIPv4(host); err == nil {
		addr.Addr = ip
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("async: bind: %w", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("async: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("async: set nonblocking: %w", err)
	}

	s := &TCPServer{mgr: m, fd: fd, acceptCb: acceptCb, client: client, nodelay: nodelay}
	s.poll = m.PollInit(fd)
	if err := s.poll.PollStart(Readable, s.onAcceptable, nil); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return s, nil
}

func resolveIPv4(host string) ([4]byte, error) {
	var ip [4]byte
	if host == "" || host == "0.0.0.0" || host == "*" {
		return ip, nil
	}
	var a, b, c, d int
	n, err := fmt.Sscanf(host, "%d.%d.%d.%d", &a, &b, &c, &d)
	if err != nil || n != 4 {
		return ip, fmt.Errorf("async: unsupported host %q, want dotted-quad or empty", host)
	}
	ip[0], ip[1], ip[2], ip[3] = byte(a), byte(b), byte(c), byte(d)
	return ip, nil
}

func (s *TCPServer) onAcceptable(EventMask, interface{}) {
	for {
		connFd, _, err := unix.Accept(s.fd)
		if err == unix.EAGAIN {
			return
		}
		if err != nil {
			log.Printf("accept: %v", err)
			return
		}
		unix.SetNonblock(connFd, true)
		if s.nodelay {
			unix.SetsockoptInt(connFd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		}
		stream := newStream(s.mgr, connFd)
		if s.acceptCb != nil {
			s.acceptCb(stream, s.client)
		}
	}
}

// Close stops accepting and releases the listening socket.
func (s *TCPServer) Close() error {
	s.poll.PollStop()
	return unix.Close(s.fd)
}
