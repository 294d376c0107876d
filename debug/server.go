//go:build unix

package debug

import (
	"fmt"

	"leigun-emu/async"
	"leigun-emu/internal/emulog"
)

var serverLog = emulog.New("gdb")

// Server listens for GDB RSP connections: at most one session at a time,
// additional accepts closed immediately.
type Server struct {
	tcp     *async.TCPServer
	backend *Backend
	session *Session
}

// NewServer starts listening on host:port and wires accepted connections
// into single-session RSP handling against backend.
func NewServer(mgr *async.Manager, host string, port int, backend *Backend) (*Server, error) {
	s := &Server{backend: backend}
	tcp, err := mgr.InitTcpServer(host, port, 1, true, s.onAccept, nil)
	if err != nil {
		return nil, fmt.Errorf("debug: starting GDB server: %w", err)
	}
	s.tcp = tcp
	return s, nil
}

func (s *Server) onAccept(stream *async.StreamHandle, _ interface{}) {
	if s.session != nil {
		serverLog.Printf("refusing extra GDB connection; a session is already active")
		stream.Close(nil, nil)
		return
	}
	session := NewSession(stream, s.backend)
	s.session = session
	stream.ReadStart(func(buf []byte, _ interface{}) {
		if len(buf) == 0 {
			session.Teardown()
			stream.Close(nil, nil)
			s.session = nil
			return
		}
		session.Feed(buf)
	}, nil)
}

// Close stops accepting new connections and tears down any live session.
func (s *Server) Close() error {
	if s.session != nil {
		s.session.Teardown()
		s.session = nil
	}
	return s.tcp.Close()
}
