package openid

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/marcopiovanello/yt-fetch/server/config"
	"golang.org/x/oauth2"
)

var (
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
)

func Configure(ctx context.Context) error {
	conf := config.Instance().OpenId
	if !conf.UseOpenId {
		return nil
	}

	provider, err := oidc.NewProvider(ctx, conf.ProviderURL)
	if err != nil {
		return err
	}

	oauth2Config = oauth2.Config{
		ClientID:     conf.ClientId,
		ClientSecret: conf.ClientSecret,
		RedirectURL:  conf.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier = provider.Verifier(&oidc.Config{
		ClientID: conf.ClientId,
	})

	return nil
}
