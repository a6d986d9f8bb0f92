package status

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	middlewares "github.com/marcopiovanello/yt-fetch/server/middleware"
	"github.com/marcopiovanello/yt-fetch/server/sys"
)

type Lister interface {
	All() []internal.MediaInfo
}

// Summary of the live job table.
type Summary struct {
	Total       int                     `json:"total"`
	Active      int                     `json:"active"`
	ByStatus    map[internal.Status]int `json:"byStatus"`
	Speed       float64                 `json:"speed"`
	SpeedString string                  `json:"speedString"`
	FreeSpace   uint64                  `json:"freeSpace"`
}

func Summarize(jobs []internal.MediaInfo) Summary {
	s := Summary{
		Total:    len(jobs),
		ByStatus: make(map[internal.Status]int),
	}

	for _, j := range jobs {
		s.ByStatus[j.Status]++

		if j.Status.IsActive() {
			s.Active++
		}
		if j.Status == internal.StatusDownloading {
			s.Speed += j.Speed
		}
	}

	s.SpeedString = internal.FormatSpeed(s.Speed)

	return s
}

func ApplyRouter(mdb Lister, downloadPath string) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)
		r.Get("/", handler(mdb, downloadPath))
	}
}

func handler(mdb Lister, downloadPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := Summarize(mdb.All())

		free, err := sys.FreeSpace(downloadPath)
		if err != nil {
			slog.Warn("cannot read free space", slog.String("path", downloadPath), slog.Any("err", err))
		}
		s.FreeSpace = free

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
