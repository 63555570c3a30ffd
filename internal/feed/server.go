// Package feed serves every chat message as newline-delimited JSON over
// plain TCP, for tailing the room from a terminal (see cmd/feed-tail).
package feed

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"

	"chathub/pkg/models"
)

type Server struct {
	ln     net.Listener
	events chan models.Message
	done   chan struct{}

	mu      sync.Mutex
	clients map[net.Conn]struct{}
}

func New() *Server {
	return &Server{
		events:  make(chan models.Message, 100),
		done:    make(chan struct{}),
		clients: make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and returns; accepting and broadcasting run in
// the background until Close.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Printf("event feed listening on %s", ln.Addr())

	go s.broadcastLoop()
	go s.acceptLoop()
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Publish queues a message for broadcast without blocking the sender. The
// feed is best-effort: when the queue is full the event is dropped.
func (s *Server) Publish(msg models.Message) {
	select {
	case s.events <- msg:
	case <-s.done:
	default:
		log.Println("feed: event queue full, dropping message")
	}
}

func (s *Server) Close() error {
	close(s.done)
	err := s.ln.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Println("feed: accept:", err)
			continue
		}
		s.mu.Lock()
		s.clients[conn] = struct{}{}
		s.mu.Unlock()
		log.Printf("feed: client connected: %s", conn.RemoteAddr())

		// read only to notice the disconnect; clients never send
		go func() {
			buf := make([]byte, 1)
			for {
				if _, err := conn.Read(buf); err != nil {
					break
				}
			}
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
			log.Printf("feed: client disconnected: %s", conn.RemoteAddr())
		}()
	}
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.events:
			b, err := json.Marshal(msg)
			if err != nil {
				log.Println("feed: marshal:", err)
				continue
			}
			b = append(b, '\n')

			s.mu.Lock()
			for conn := range s.clients {
				if _, err := conn.Write(b); err != nil {
					delete(s.clients, conn)
					conn.Close()
				}
			}
			s.mu.Unlock()
		}
	}
}
