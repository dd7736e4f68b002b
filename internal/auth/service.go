// Package auth implements registration, login, e-mail verification and
// password reset on top of a credential store.
//
// Each user carries two independent one-time-code tracks. Verification moves
// Unverified -> OtpPending -> Verified; reset moves Normal -> ResetPending ->
// Normal with a new password. Issuing a code overwrites the previous one, a
// wrong or expired code leaves the track untouched, and a successful
// confirmation clears the code so it cannot be replayed.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/authflow/internal/domain"
	"github.com/tazhibayda/authflow/internal/helper"
	"github.com/tazhibayda/authflow/internal/log"
	"github.com/tazhibayda/authflow/internal/metrics"
	"github.com/tazhibayda/authflow/internal/notify"
	"github.com/tazhibayda/authflow/internal/repo"
	"github.com/tazhibayda/authflow/internal/security"
)

// Store is the credential store. Lookups return repo.ErrNotFound for missing
// users; the Consume* methods return repo.ErrStale when the stored code is no
// longer the one passed in.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetVerifyOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	ConsumeVerifyOTP(ctx context.Context, id primitive.ObjectID, code string) error
	SetResetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	ConsumeResetOTP(ctx context.Context, id primitive.ObjectID, code, passwordHash string) error
}

type TokenIssuer interface {
	Issue(uid string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type Config struct {
	VerifyOTPTTL time.Duration
	ResetOTPTTL  time.Duration
	BcryptCost   int
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	store    Store
	tokens   TokenIssuer
	otp      security.OTPGenerator
	notifier notify.Sender
	cfg      Config
	now      func() time.Time
}

func NewService(store Store, tokens TokenIssuer, otp security.OTPGenerator, notifier notify.Sender, cfg Config) *Service {
	if cfg.VerifyOTPTTL <= 0 {
		cfg.VerifyOTPTTL = security.DefaultVerifyOTPTTL
	}
	if cfg.ResetOTPTTL <= 0 {
		cfg.ResetOTPTTL = security.DefaultResetOTPTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = security.DefaultBcryptCost
	}
	if otp == nil {
		otp = security.RandomOTP{}
	}
	return &Service{store: store, tokens: tokens, otp: otp, notifier: notifier, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source used for OTP expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name, email := strings.TrimSpace(in.Name), strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return s.done(ctx, "register", Session{}, fail(ErrValidation, "REGISTER_MISSING_FIELDS", MsgMissingDetails))
	}
	if err := validateEmail(email); err != nil {
		return s.done(ctx, "register", Session{}, err)
	}
	if err := validatePassword(in.Password); err != nil {
		return s.done(ctx, "register", Session{}, err)
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return s.done(ctx, "register", Session{}, fail(ErrConflict, "USER_EXISTS", MsgUserExists))
	} else if !errors.Is(err, repo.ErrNotFound) {
		return s.done(ctx, "register", Session{}, internal("FindUserByEmail", err))
	}

	hash, err := security.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return s.done(ctx, "register", Session{}, internal("HashPassword", err))
	}
	u := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// lost a race with a concurrent registration of the same email
			return s.done(ctx, "register", Session{}, fail(ErrConflict, "USER_EXISTS", MsgUserExists))
		}
		return s.done(ctx, "register", Session{}, internal("CreateUser", err))
	}

	sess, err := s.issue(u)
	if err != nil {
		return s.done(ctx, "register", Session{}, err)
	}
	s.notify(ctx, notify.Message{Kind: notify.KindWelcome, To: u.Email, Name: u.Name})
	log.Ctx(ctx).Info("user registered", zap.String("user_id", sess.UserID), zap.String("email", helper.EmailTag(email)))
	return s.done(ctx, "register", sess, nil)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return s.done(ctx, "login", Session{}, fail(ErrValidation, "LOGIN_MISSING_FIELDS", MsgCredentialsNeeded))
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return s.done(ctx, "login", Session{}, fail(ErrAuthentication, "INVALID_CREDENTIALS", MsgInvalidCredentials))
	}
	if err != nil {
		return s.done(ctx, "login", Session{}, internal("FindUserByEmail", err))
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		return s.done(ctx, "login", Session{}, fail(ErrAuthentication, "INVALID_CREDENTIALS", MsgInvalidCredentials))
	}
	sess, err := s.issue(u)
	return s.done(ctx, "login", sess, err)
}

// Authenticate checks a session token and returns the user id it carries. It
// does not consult the store.
func (s *Service) Authenticate(token string) (string, error) {
	if token == "" {
		return "", fail(ErrAuthentication, "TOKEN_MISSING", MsgNotAuthorized)
	}
	uid, err := s.tokens.Verify(token)
	if errors.Is(err, security.ErrTokenExpired) {
		return "", fail(ErrAuthentication, "TOKEN_EXPIRED", MsgSessionExpired)
	}
	if err != nil {
		return "", fail(ErrAuthentication, "TOKEN_INVALID", MsgNotAuthorized)
	}
	return uid, nil
}

// CheckSession verifies token and that its user still exists.
func (s *Service) CheckSession(ctx context.Context, token string) (string, error) {
	uid, err := s.Authenticate(token)
	if err != nil {
		return s.doneID(ctx, "check_session", "", err)
	}
	if _, err := s.user(ctx, uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = fail(ErrAuthentication, "TOKEN_UNKNOWN_USER", MsgNotAuthorized)
		}
		return s.doneID(ctx, "check_session", "", err)
	}
	return s.doneID(ctx, "check_session", uid, nil)
}

// UserData returns the profile of an authenticated user.
func (s *Service) UserData(ctx context.Context, userID string) (*domain.User, error) {
	return s.user(ctx, userID)
}

func (s *Service) RequestEmailVerification(ctx context.Context, userID string) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return s.doneErr(ctx, "send_verify_otp", err)
	}
	if u.Verified {
		return s.doneErr(ctx, "send_verify_otp", fail(ErrConflict, "ALREADY_VERIFIED", MsgAlreadyVerified))
	}
	code, exp, err := s.newOTP(s.cfg.VerifyOTPTTL)
	if err != nil {
		return s.doneErr(ctx, "send_verify_otp", err)
	}
	if err := s.store.SetVerifyOTP(ctx, u.ID, code, exp); err != nil {
		return s.doneErr(ctx, "send_verify_otp", internal("SetVerifyOTP", err))
	}
	metrics.OTPIssued.WithLabelValues("verify").Inc()
	s.notify(ctx, notify.Message{Kind: notify.KindVerifyOTP, To: u.Email, Name: u.Name, OTP: code, ExpiresAt: exp})
	return s.doneErr(ctx, "send_verify_otp", nil)
}

func (s *Service) ConfirmEmailVerification(ctx context.Context, userID, code string) error {
	code = strings.TrimSpace(code)
	if userID == "" || code == "" {
		return s.doneErr(ctx, "verify_account", fail(ErrValidation, "VERIFY_MISSING_FIELDS", MsgMissingDetails))
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return s.doneErr(ctx, "verify_account", err)
	}
	if err := s.checkOTP(u.VerifyOTP, u.VerifyOTPExpiry, code, MsgVerifyOTPExpired); err != nil {
		return s.doneErr(ctx, "verify_account", err)
	}
	if err := s.store.ConsumeVerifyOTP(ctx, u.ID, code); err != nil {
		return s.doneErr(ctx, "verify_account", consumeErr("ConsumeVerifyOTP", err))
	}
	return s.doneErr(ctx, "verify_account", nil)
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return s.doneErr(ctx, "send_reset_otp", fail(ErrValidation, "RESET_EMAIL_MISSING", MsgEmailRequired))
	}
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return s.doneErr(ctx, "send_reset_otp", err)
	}
	code, exp, err := s.newOTP(s.cfg.ResetOTPTTL)
	if err != nil {
		return s.doneErr(ctx, "send_reset_otp", err)
	}
	if err := s.store.SetResetOTP(ctx, u.ID, code, exp); err != nil {
		return s.doneErr(ctx, "send_reset_otp", internal("SetResetOTP", err))
	}
	metrics.OTPIssued.WithLabelValues("reset").Inc()
	s.notify(ctx, notify.Message{Kind: notify.KindResetOTP, To: u.Email, Name: u.Name, OTP: code, ExpiresAt: exp})
	return s.doneErr(ctx, "send_reset_otp", nil)
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email, code = strings.TrimSpace(email), strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return s.doneErr(ctx, "reset_password", fail(ErrValidation, "RESET_MISSING_FIELDS", MsgResetFieldsNeeded))
	}
	if err := validatePassword(newPassword); err != nil {
		return s.doneErr(ctx, "reset_password", err)
	}
	u, err := s.userByEmail(ctx, email)
	if err != nil {
		return s.doneErr(ctx, "reset_password", err)
	}
	if err := s.checkOTP(u.ResetOTP, u.ResetOTPExpiry, code, MsgResetOTPExpired); err != nil {
		return s.doneErr(ctx, "reset_password", err)
	}
	hash, err := security.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return s.doneErr(ctx, "reset_password", internal("HashPassword", err))
	}
	if err := s.store.ConsumeResetOTP(ctx, u.ID, code, hash); err != nil {
		return s.doneErr(ctx, "reset_password", consumeErr("ConsumeResetOTP", err))
	}
	return s.doneErr(ctx, "reset_password", nil)
}

// checkOTP validates a submitted code against the stored one. A code is
// expired once now reaches its expiry.
func (s *Service) checkOTP(stored string, expiresAt time.Time, submitted, expiredMsg string) error {
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return fail(ErrOTP, "OTP_INVALID", MsgInvalidOTP)
	}
	if !s.now().Before(expiresAt) {
		return fail(ErrOTP, "OTP_EXPIRED", expiredMsg)
	}
	return nil
}

func consumeErr(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrStale):
		return fail(ErrOTP, "OTP_INVALID", MsgInvalidOTP)
	case errors.Is(err, repo.ErrNotFound):
		return fail(ErrNotFound, "USER_NOT_FOUND", MsgUserNotFound)
	}
	return internal(op, err)
}

func (s *Service) newOTP(ttl time.Duration) (string, time.Time, error) {
	code, err := s.otp.Generate()
	if err != nil {
		return "", time.Time{}, internal("GenerateOTP", err)
	}
	return code, s.now().Add(ttl), nil
}

func (s *Service) issue(u *domain.User) (Session, error) {
	uid := u.ID.Hex()
	tok, exp, err := s.tokens.Issue(uid)
	if err != nil {
		return Session{}, internal("IssueToken", err)
	}
	return Session{UserID: uid, Token: tok, ExpiresAt: exp}, nil
}

func (s *Service) user(ctx context.Context, userID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fail(ErrNotFound, "USER_NOT_FOUND", MsgUserNotFound)
	}
	u, err := s.store.FindUserByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fail(ErrNotFound, "USER_NOT_FOUND", MsgUserNotFound)
	}
	if err != nil {
		return nil, internal("FindUserByID", err)
	}
	return u, nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fail(ErrNotFound, "USER_NOT_FOUND", MsgUserNotFound)
	}
	if err != nil {
		return nil, internal("FindUserByEmail", err)
	}
	return u, nil
}

// notify hands m to the configured sender. Delivery failures never fail the
// calling operation; the sender decides how they are reported.
func (s *Service) notify(ctx context.Context, m notify.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, m); err != nil {
		log.Ctx(ctx).Error("notification failed",
			zap.String("kind", string(m.Kind)),
			zap.String("to", helper.EmailTag(m.To)),
			zap.Error(err),
		)
	}
}

// validateEmail accepts a bare addr-spec, the same form the mailer parses
// when it addresses a message.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return fail(ErrValidation, "EMAIL_INVALID", MsgInvalidEmail)
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) > security.MaxPasswordBytes {
		return fail(ErrValidation, "PASSWORD_TOO_LONG", MsgPasswordTooLong)
	}
	return nil
}

func (s *Service) done(ctx context.Context, op string, sess Session, err error) (Session, error) {
	record(ctx, op, err)
	return sess, err
}

func (s *Service) doneID(ctx context.Context, op, uid string, err error) (string, error) {
	record(ctx, op, err)
	return uid, err
}

func (s *Service) doneErr(ctx context.Context, op string, err error) error {
	record(ctx, op, err)
	return err
}

func record(ctx context.Context, op string, err error) {
	if err == nil {
		metrics.AuthOps.WithLabelValues(op, "ok").Inc()
		return
	}
	kind := KindOf(err)
	metrics.AuthOps.WithLabelValues(op, kind.Error()).Inc()
	if kind == ErrInternal {
		log.Ctx(ctx).Error(op+" failed", zap.Error(err))
		return
	}
	log.Ctx(ctx).Debug(op+" rejected", zap.String("reason", Message(err)))
}
