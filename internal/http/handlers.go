package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/authflow/internal/auth"
	"github.com/tazhibayda/authflow/internal/log"
	"github.com/tazhibayda/authflow/internal/security"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type KeySet interface {
	JWKS() security.JWKS
}

type Handler struct {
	Auth   *auth.Service
	Store  Pinger
	Keys   KeySet
	Cookie CookieConfig
}

func NewHandler(svc *auth.Service, store Pinger, keys KeySet, cookie CookieConfig) *Handler {
	return &Handler{Auth: svc, Store: store, Keys: keys, Cookie: cookie}
}

type statusResp struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type sessionResp struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type userData struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

type userDataResp struct {
	Success  bool     `json:"success"`
	UserData userData `json:"userData"`
}

const msgBadBody = "Invalid request body"

// bind decodes a JSON body. An empty body decodes to the zero value so the
// service reports which fields are missing.
func bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, statusResp{Message: msgBadBody})
		return false
	}
	return true
}

func statusOf(err error) int {
	switch auth.KindOf(err) {
	case auth.ErrValidation, auth.ErrOTP:
		return http.StatusBadRequest
	case auth.ErrAuthentication:
		return http.StatusUnauthorized
	case auth.ErrNotFound:
		return http.StatusNotFound
	case auth.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), statusResp{Message: auth.Message(err)})
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerReq true "register"
// @Success 200 {object} sessionResp
// @Failure 400 {object} statusResp
// @Failure 409 {object} statusResp
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in registerReq
	if !bind(c, &in) {
		return
	}
	sess, err := h.Auth.Register(c.Request.Context(), auth.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookie.set(c, sess.Token, time.Until(sess.ExpiresAt))
	c.JSON(http.StatusOK, sessionResp{Success: true, Token: sess.Token})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginReq true "login"
// @Success 200 {object} sessionResp
// @Failure 400 {object} statusResp
// @Failure 401 {object} statusResp
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in loginReq
	if !bind(c, &in) {
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.Cookie.set(c, sess.Token, time.Until(sess.ExpiresAt))
	c.JSON(http.StatusOK, sessionResp{Success: true, Token: sess.Token})
}

// Logout godoc
// @Summary Logout
// @Description Clears the session cookie. Tokens are stateless and stay valid until they expire.
// @Tags auth
// @Produce json
// @Success 200 {object} statusResp
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.Cookie.clear(c)
	c.JSON(http.StatusOK, statusResp{Success: true, Message: "Logged Out"})
}

// SendVerifyOTP godoc
// @Summary Send account verification code
// @Tags auth
// @Security CookieAuth
// @Produce json
// @Success 200 {object} statusResp
// @Failure 401 {object} statusResp
// @Failure 409 {object} statusResp
// @Router /api/auth/send-verify-otp [post]
func (h *Handler) SendVerifyOTP(c *gin.Context) {
	if err := h.Auth.RequestEmailVerification(c.Request.Context(), c.GetString(ctxUserID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResp{Success: true, Message: "Verification OTP sent on email"})
}

type verifyReq struct {
	OTP string `json:"otp"`
}

// VerifyAccount godoc
// @Summary Confirm account with the emailed code
// @Tags auth
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param payload body verifyReq true "otp"
// @Success 200 {object} statusResp
// @Failure 400 {object} statusResp
// @Failure 401 {object} statusResp
// @Router /api/auth/verify-account [post]
func (h *Handler) VerifyAccount(c *gin.Context) {
	var in verifyReq
	if !bind(c, &in) {
		return
	}
	if err := h.Auth.ConfirmEmailVerification(c.Request.Context(), c.GetString(ctxUserID), in.OTP); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResp{Success: true, Message: "Email verified successfully"})
}

type resetOTPReq struct {
	Email string `json:"email"`
}

// SendResetOTP godoc
// @Summary Send password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body resetOTPReq true "email"
// @Success 200 {object} statusResp
// @Failure 400 {object} statusResp
// @Failure 404 {object} statusResp
// @Router /api/auth/send-reset-otp [post]
func (h *Handler) SendResetOTP(c *gin.Context) {
	var in resetOTPReq
	if !bind(c, &in) {
		return
	}
	if err := h.Auth.RequestPasswordReset(c.Request.Context(), in.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResp{Success: true, Message: "OTP sent to your email"})
}

type resetReq struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword godoc
// @Summary Reset password with the emailed code
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body resetReq true "email, otp, newPassword"
// @Success 200 {object} statusResp
// @Failure 400 {object} statusResp
// @Failure 404 {object} statusResp
// @Router /api/auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var in resetReq
	if !bind(c, &in) {
		return
	}
	if err := h.Auth.ConfirmPasswordReset(c.Request.Context(), in.Email, in.OTP, in.NewPassword); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResp{Success: true, Message: "Password has been reset successfully"})
}

// IsAuth godoc
// @Summary Check the current session
// @Tags auth
// @Security CookieAuth
// @Produce json
// @Success 200 {object} statusResp
// @Failure 401 {object} statusResp
// @Router /api/auth/is-auth [get]
func (h *Handler) IsAuth(c *gin.Context) {
	if _, err := h.Auth.CheckSession(c.Request.Context(), c.GetString(ctxToken)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResp{Success: true})
}

// UserData godoc
// @Summary Current user profile
// @Tags user
// @Security CookieAuth
// @Produce json
// @Success 200 {object} userDataResp
// @Failure 401 {object} statusResp
// @Failure 404 {object} statusResp
// @Router /api/user/data [get]
func (h *Handler) UserData(c *gin.Context) {
	u, err := h.Auth.UserData(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userDataResp{
		Success:  true,
		UserData: userData{Name: u.Name, Email: u.Email, IsAccountVerified: u.Verified},
	})
}

func (h *Handler) JWKS(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, h.Keys.JWKS())
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Ctx(c.Request.Context()).Warn("health check failed", zap.Error(err))
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
