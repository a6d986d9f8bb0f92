package rpc

import (
	"io"
	"log/slog"
	"net/http"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1 << 10,
	WriteBufferSize: 1 << 10,
}

// wsConn adapts a websocket to the io.ReadWriteCloser the JSON-RPC codec
// expects. Each codec write is one text message.
type wsConn struct {
	conn *websocket.Conn
	r    io.Reader
	mu   sync.Mutex
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			_, r, err := c.conn.NextReader()
			if err != nil {
				return 0, err
			}
			c.r = r
		}

		n, err := c.r.Read(p)
		if err == io.EOF {
			c.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error { return c.conn.Close() }

// WebSocket serves JSON-RPC over a websocket until the client disconnects.
func WebSocket(server *rpc.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("err", err))
			return
		}

		server.ServeCodec(jsonrpc.NewServerCodec(&wsConn{conn: c}))
	}
}

type httpConn struct {
	io.Reader
	io.Writer
}

func (httpConn) Close() error { return nil }

// Post serves a single JSON-RPC request per http request.
func Post(server *rpc.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		w.Header().Set("Content-Type", "application/json")

		if err := server.ServeRequest(jsonrpc.NewServerCodec(httpConn{r.Body, w})); err != nil {
			slog.Warn("rpc request failed", slog.Any("err", err))
		}
	}
}
