package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type MFAGenerateRequest struct {
	UserID   *int64  `json:"user_id"`
	UserName *string `json:"user_name"`
}

type MFAAuthenticateRequest struct {
	MFAToken MFACode `json:"mfaToken"`
}

// MFACode is a TOTP code sent either as a string or as a bare JSON number.
// Numbers are zero-padded to six digits since leading zeros do not survive
// JSON encoding.
type MFACode string

func (m *MFACode) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MFACode(s)
		return nil
	}

	var n uint32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("mfaToken: %w", err)
	}
	*m = MFACode(fmt.Sprintf("%06d", n))
	return nil
}

type accessToken struct {
	AccessToken string `json:"accessToken"`
}

type TokenResponse struct {
	Token accessToken `json:"token"`
}

type Handler struct {
	auth   *services.AuthService
	mfa    *services.MFAService
	logger logging.Logger
}

func NewHandler(a *services.AuthService, m *services.MFAService, l logging.Logger) *Handler {
	return &Handler{auth: a, mfa: m, logger: l.With("module", "rest_handler")}
}

func (h *Handler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "login", common.ErrorBadRequest)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}

	h.logger.Info(c.Request.Context(), "token issued", "username", req.Username)
	c.JSON(http.StatusOK, TokenResponse{Token: accessToken{AccessToken: token}})
}

func (h *Handler) About(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": "hello world"})
}

func (h *Handler) Logout(c *gin.Context) {
	res := authResult(c)
	if err := h.auth.Logout(c.Request.Context(), res.Token, res.Claims); err != nil {
		h.fail(c, "logout", err)
		return
	}

	h.logger.Info(c.Request.Context(), "token revoked", "user_id", res.Claims.ID)
	c.String(http.StatusOK, http.StatusText(http.StatusOK))
}

// MFAGenerate enrolls a new TOTP secret for the token's user and returns the
// provisioning QR code. A body naming a different user is refused.
func (h *Handler) MFAGenerate(c *gin.Context) {
	res := authResult(c)

	var req MFAGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, "mfa generate", common.ErrorBadRequest)
		return
	}
	if (req.UserID != nil && *req.UserID != res.Claims.ID) ||
		(req.UserName != nil && *req.UserName != res.Claims.Username) {
		h.fail(c, "mfa generate", common.ErrorForbidden)
		return
	}

	enr, err := h.mfa.Enroll(c.Request.Context(), res.Claims.ID, res.Claims.Username)
	if err != nil {
		h.fail(c, "mfa generate", err)
		return
	}

	h.logger.Info(c.Request.Context(), "mfa secret enrolled", "user_id", res.Claims.ID)
	c.Data(http.StatusOK, "image/png", enr.QR)
}

func (h *Handler) MFAAuthenticate(c *gin.Context) {
	res := authResult(c)

	var req MFAAuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "mfa authenticate", common.ErrorBadRequest)
		return
	}

	token, err := h.mfa.StepUp(c.Request.Context(), res.Claims, string(req.MFAToken))
	if err != nil {
		h.fail(c, "mfa authenticate", err)
		return
	}

	h.logger.Info(c.Request.Context(), "mfa step-up succeeded", "user_id", res.Claims.ID)
	c.JSON(http.StatusOK, TokenResponse{Token: accessToken{AccessToken: token}})
}

func (h *Handler) Me(c *gin.Context) {
	res := authResult(c)
	c.JSON(http.StatusOK, gin.H{"id": res.Claims.ID, "username": res.Claims.Username})
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := errorStatus(err)
	args := []any{"op", op, "status", status, "request_id", c.GetString(requestIDKey), "error", err}
	if res := authResult(c); res != nil {
		args = append(args, "user_id", res.Claims.ID)
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", args...)
	} else {
		h.logger.Warn(c.Request.Context(), "request failed", args...)
	}
	c.AbortWithStatus(status)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
