package rest

import (
	"github.com/go-chi/chi/v5"
	middlewares "github.com/marcopiovanello/yt-fetch/server/middleware"
)

func ApplyRouter(args *ContainerArgs) func(chi.Router) {
	h := ProvideHandler(ProvideService(args))

	return func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)
		h.Routes(r)
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/preview", h.Preview())
	r.Post("/transfer", h.Transfer())
	r.Delete("/transfer/{id}", h.Cancel())
	r.Post("/convert", h.Convert())

	r.Get("/jobs", h.Jobs())
	r.Get("/jobs/{id}", h.Job())
	r.Delete("/jobs/{id}", h.RemoveJob())

	r.Get("/archive", h.Archive())
	r.Get("/thumbnail/{id}", h.Thumbnail())
	r.Get("/free-space", h.FreeSpace())
}
