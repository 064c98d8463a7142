package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookprepper/bookprepper-server/internal/auth"
	"github.com/bookprepper/bookprepper-server/internal/config"
	"github.com/bookprepper/bookprepper-server/internal/logger"
)

// ProvideVerifier provides the identity token verifier.
func ProvideVerifier(i do.Injector) (*auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	verifier, err := auth.NewVerifier(auth.Options{
		Secret:      cfg.Auth.JWTSecret,
		Issuer:      cfg.Auth.Issuer,
		Audience:    cfg.Auth.Audience,
		AdminEmails: cfg.Auth.AdminEmails,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Token verifier ready", "admin_emails", len(cfg.Auth.AdminEmails))
	return verifier, nil
}
