package logging

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	middlewares "github.com/marcopiovanello/yt-fetch/server/middleware"
)

const backlog = 200

// ObservableLogger keeps the most recent log lines and forwards new ones to
// websocket listeners.
type ObservableLogger struct {
	mu        sync.Mutex
	lines     []string
	listeners map[chan string]struct{}
}

func NewObservableLogger() *ObservableLogger {
	return &ObservableLogger{listeners: make(map[chan string]struct{})}
}

func (o *ObservableLogger) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		o.lines = append(o.lines, line)
		if len(o.lines) > backlog {
			o.lines = o.lines[1:]
		}

		for ch := range o.listeners {
			select {
			case ch <- line:
			default:
			}
		}
	}

	return len(p), nil
}

func (o *ObservableLogger) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.lines...)
}

func (o *ObservableLogger) listen() (chan string, []string) {
	ch := make(chan string, backlog)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.listeners[ch] = struct{}{}
	return ch, append([]string(nil), o.lines...)
}

func (o *ObservableLogger) forget(ch chan string) {
	o.mu.Lock()
	delete(o.listeners, ch)
	o.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func ApplyRouter(o *ObservableLogger) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)
		r.Get("/ws", o.webSocket)
	}
}

func (o *ObservableLogger) webSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	ch, recent := o.listen()
	defer o.forget(ch)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, line := range recent {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case line := <-ch:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return
			}
		}
	}
}
