package rpc

import (
	"net/rpc"

	"github.com/go-chi/chi/v5"
	middlewares "github.com/marcopiovanello/yt-fetch/server/middleware"
	"github.com/marcopiovanello/yt-fetch/server/rest"
)

// Dependency injection container.
func Container(svc *rest.Service) *Service {
	return &Service{svc: svc}
}

// Register exposes the service under the "Service" name, as in
// {"method": "Service.Preview"}.
func Register(server *rpc.Server, s *Service) error {
	return server.Register(s)
}

func ApplyRouter(server *rpc.Server, hub *Hub) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)
		r.Get("/ws", WebSocket(server))
		r.Post("/http", Post(server))
		r.Get("/events", hub.Subscribe)
	}
}
