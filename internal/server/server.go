package server

import (
	"log/slog"
	"net"
)

// Server accepts TCP connections and hands each one to the worker in its own
// goroutine. Connections share nothing; the worker keeps all request state
// local.
type Server struct {
	Addr   string
	Worker *Worker
	Logger *slog.Logger
}

// ListenAndServe listens on the configured address and serves until the
// listener fails.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	defer l.Close()
	return s.Serve(l)
}

// Serve runs the accept loop on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.Logger.Info("listening", "addr", l.Addr().String())
	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go s.Worker.Handle(conn)
	}
}
