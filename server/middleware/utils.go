package middlewares

import (
	"net/http"

	"github.com/marcopiovanello/yt-fetch/server/config"
)

func ApplyAuthenticationByConfig(next http.Handler) http.Handler {
	conf := config.Instance()

	if conf.Authentication.RequireAuth || conf.OpenId.UseOpenId {
		return Authenticated(next)
	}

	return next
}
