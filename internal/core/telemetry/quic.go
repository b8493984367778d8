package telemetry

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/haptics/internal/core/observability/log"
)

const subscribeLine = "subscribe"

type quicSubscriber struct {
	stream *quic.Stream
	send   chan []byte
}

// QUICServer streams newline-delimited JSON samples to monitors. A monitor
// opens a bidirectional stream and writes "subscribe\n" to start receiving.
type QUICServer struct {
	addr    string
	tlsConf *tls.Config
	config  *quic.Config

	mu       sync.Mutex
	subs     map[*quicSubscriber]struct{}
	listener *quic.Listener
	ready    chan struct{}
	closed   bool

	logger log.Log
}

// NewQUICServer prepares a server for addr with a self-signed certificate.
func NewQUICServer(addr string, logger log.Log) (*QUICServer, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	tlsConf, err := SelfSignedTLS()
	if err != nil {
		return nil, err
	}
	return &QUICServer{
		addr:    addr,
		tlsConf: tlsConf,
		config: &quic.Config{
			MaxIdleTimeout:  30 * time.Second,
			KeepAlivePeriod: 10 * time.Second,
		},
		subs:   make(map[*quicSubscriber]struct{}),
		ready:  make(chan struct{}),
		logger: logger.With(log.String("sink", "quic")),
	}, nil
}

// Ready is closed once the listener is bound.
func (s *QUICServer) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, or nil before Ready.
func (s *QUICServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens and serves monitors until ctx ends.
func (s *QUICServer) Run(ctx context.Context) error {
	listener, err := quic.ListenAddr(s.addr, s.tlsConf, s.config)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	close(s.ready)
	s.logger.Info("QUIC telemetry listening", log.String("addr", listener.Addr().String()))

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	for {
		conn, err := listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "failed to accept QUIC connection")
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *QUICServer) handleConn(ctx context.Context, conn *quic.Conn) {
	logger := s.logger.With(log.String("remote_addr", conn.RemoteAddr().String()))
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		logger.Debug("Monitor left before opening a stream", log.Error(err))
		_ = conn.CloseWithError(0, "")
		return
	}

	line, err := bufio.NewReader(stream).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != subscribeLine {
		logger.Warn("Rejected monitor", log.ErrorWithKey("reason", ErrHandshake))
		_ = conn.CloseWithError(1, ErrHandshake.Error())
		return
	}

	sub := &quicSubscriber{stream: stream, send: make(chan []byte, clientQueue)}
	if !s.add(sub) {
		_ = conn.CloseWithError(0, ErrServerClosed.Error())
		return
	}
	logger.Info("Monitor subscribed")
	go func() {
		<-conn.Context().Done()
		s.remove(sub)
	}()

	defer func() {
		s.remove(sub)
		_ = conn.CloseWithError(0, "")
		logger.Info("Monitor unsubscribed")
	}()
	for msg := range sub.send {
		_ = stream.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := stream.Write(msg); err != nil {
			return
		}
	}
}

func (s *QUICServer) add(sub *quicSubscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.subs[sub] = struct{}{}
	return true
}

func (s *QUICServer) remove(sub *quicSubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.send)
	}
}

// Send queues msg, newline terminated, for every subscribed monitor.
func (s *QUICServer) Send(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	out := make([]byte, len(msg)+1)
	copy(out, msg)
	out[len(msg)] = '\n'
	for sub := range s.subs {
		select {
		case sub.send <- out:
		default:
		}
	}
}

// Subscribers returns the number of subscribed monitors.
func (s *QUICServer) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *QUICServer) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		delete(s.subs, sub)
		close(sub.send)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Monitor is the client side of a QUIC telemetry subscription.
type Monitor struct {
	conn    *quic.Conn
	stream  *quic.Stream
	scanner *bufio.Scanner
}

// DialMonitor connects to a QUICServer and subscribes. Certificates are not
// verified; the server uses a self-signed one.
func DialMonitor(ctx context.Context, addr string) (*Monitor, error) {
	tlsConf := &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{ALPN},
	}
	conn, err := quic.DialAddr(ctx, addr, tlsConf, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial %s", addr)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, errors.Wrap(err, "failed to open stream")
	}
	if _, err = stream.Write([]byte(subscribeLine + "\n")); err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, errors.Wrap(err, "failed to subscribe")
	}
	return &Monitor{conn: conn, stream: stream, scanner: bufio.NewScanner(stream)}, nil
}

// Next blocks for the next sample.
func (m *Monitor) Next() (Sample, error) {
	var s Sample
	if !m.scanner.Scan() {
		if err := m.scanner.Err(); err != nil {
			return s, errors.Wrap(err, "read sample")
		}
		return s, ErrServerClosed
	}
	if err := json.Unmarshal(m.scanner.Bytes(), &s); err != nil {
		return s, errors.Wrap(err, "decode sample")
	}
	return s, nil
}

func (m *Monitor) Close() error {
	return m.conn.CloseWithError(0, "")
}
