package resp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Store is the narrow engine surface the server drives. Get reports
// found=false for keys that were never written or were deleted.
type Store interface {
	Set(key, value string) error
	Get(key string) (value string, found bool, err error)
	Delete(key string) error
}

// Server accepts RESP-2 connections and applies their commands to the
// store. Connections are handled concurrently; writes are serialized onto
// the store, which expects a single writer.
type Server struct {
	store Store

	writeLock sync.Mutex

	lock     sync.Mutex
	listener net.Listener
	closed   bool
	conns    sync.WaitGroup
}

// NewServer returns a server for the given store.
func NewServer(store Store) *Server {
	return &Server{store: store}
}

// ListenAndServe listens on addr and serves until Close is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on the listener until Close is called. If Close
// has already been called, it closes the listener and returns nil at once.
func (s *Server) Serve(ln net.Listener) error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		ln.Close()
		return nil
	}
	s.listener = ln
	s.lock.Unlock()

	log.Infof("serving on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.lock.Lock()
			closed := s.closed
			s.lock.Unlock()
			if closed {
				s.conns.Wait()
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting connections. Connections already accepted are not
// closed: they keep being served until their clients disconnect, and Serve
// returns only once they have all finished.
func (s *Server) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		cmd, err := ReadCommand(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			if errors.Is(err, ErrMalformed) {
				// Framing is gone; report and drop the connection rather
				// than misparse subsequent bytes.
				_ = WriteError(conn, err.Error())
			}
			log.Debugf("closing connection %s: %v", conn.RemoteAddr(), err)
			return
		}

		if err := s.apply(cmd, conn); err != nil {
			log.Debugf("closing connection %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// apply executes one command and writes its reply. The returned error is a
// connection-level write failure; command failures are reported to the
// client in-band.
func (s *Server) apply(cmd *Command, w io.Writer) error {
	switch cmd.Name {
	case "SET":
		s.writeLock.Lock()
		err := s.store.Set(cmd.Key, cmd.Value)
		s.writeLock.Unlock()
		if err != nil {
			return WriteError(w, err.Error())
		}
		return WriteOK(w)

	case "DEL":
		s.writeLock.Lock()
		err := s.store.Delete(cmd.Key)
		s.writeLock.Unlock()
		if err != nil {
			return WriteError(w, err.Error())
		}
		return WriteOK(w)

	case "GET":
		value, found, err := s.store.Get(cmd.Key)
		if err != nil {
			return WriteError(w, err.Error())
		}
		if !found {
			return WriteError(w, "Key not found")
		}
		return WriteBulk(w, value)

	default:
		return WriteError(w, fmt.Sprintf("unknown command %q", cmd.Name))
	}
}
