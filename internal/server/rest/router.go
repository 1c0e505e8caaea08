package rest

import (
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/authz"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the routes. Every protected route runs the revocation
// stage; /me additionally requires an MFA-elevated token.
func NewRouter(h *Handler, tokens authz.TokenVerifier, identities authz.IdentityConfirmer,
	revocations authz.RevocationChecker, l logging.Logger) *gin.Engine {
	base := authz.New(tokens, identities, authz.WithRevocationCheck(revocations))

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(l))

	r.GET("/ping", h.Ping)
	r.POST("/token", h.Token)

	protected := r.Group("/")
	protected.Use(authorize(base, l))
	{
		protected.GET("/about", h.About)
		protected.POST("/logout", h.Logout)
		protected.POST("/mfa/generate", h.MFAGenerate)
		protected.POST("/mfa/authenticate", h.MFAAuthenticate)
	}

	elevated := r.Group("/")
	elevated.Use(authorize(base.With(authz.RequireElevation()), l))
	{
		elevated.GET("/me", h.Me)
	}

	return r
}
