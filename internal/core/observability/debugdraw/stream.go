package debugdraw

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/climbforge/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const writeWait = time.Second

// Frame is what viewers receive: every shape drawn by one actor during one tick.
type Frame struct {
	Actor  string  `json:"actor"`
	Tick   uint64  `json:"tick"`
	Shapes []Shape `json:"shapes"`
}

// Stream broadcasts frames to connected websocket viewers. Frames are dropped when
// the outgoing buffer is full so the simulation never waits on a viewer.
type Stream struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	frames  chan Frame
	log     log.Log
}

func NewStream(buffer int, logger log.Log) *Stream {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Stream{
		clients: make(map[*websocket.Conn]struct{}),
		frames:  make(chan Frame, buffer),
		log:     logger,
	}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("debug stream upgrade failed", log.Error(err))
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	s.log.Debug("debug viewer connected", log.String("remote", conn.RemoteAddr().String()))

	// Drain reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

// Publish queues a frame, dropping it when the buffer is full.
func (s *Stream) Publish(f Frame) bool {
	select {
	case s.frames <- f:
		return true
	default:
		return false
	}
}

func (s *Stream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Run writes queued frames to every viewer until ctx is done.
func (s *Stream) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return ctx.Err()
		case f := <-s.frames:
			s.broadcast(f)
		}
	}
}

func (s *Stream) broadcast(f Frame) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteJSON(f); err != nil {
			s.log.Debug("debug viewer dropped", log.Error(err))
			s.drop(c)
		}
	}
}

func (s *Stream) drop(c *websocket.Conn) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		_ = c.Close()
	}
	s.mu.Unlock()
}

func (s *Stream) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.Close()
		delete(s.clients, c)
	}
}

// Buffer is a Sink that collects shapes for one tick and hands them to a Stream.
type Buffer struct {
	Actor  string
	stream *Stream
	tick   uint64
	shapes []Shape
}

func NewBuffer(actor string, stream *Stream) *Buffer {
	return &Buffer{Actor: actor, stream: stream}
}

func (b *Buffer) Draw(s Shape) {
	b.shapes = append(b.shapes, s)
}

// Flush publishes the collected shapes as one frame.
func (b *Buffer) Flush() {
	b.tick++
	if len(b.shapes) == 0 {
		return
	}
	b.stream.Publish(Frame{Actor: b.Actor, Tick: b.tick, Shapes: b.shapes})
	b.shapes = nil
}
