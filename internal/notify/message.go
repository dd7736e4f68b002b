// Package notify defines the messages the auth flow sends to users and the
// policy for delivering them.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"
)

type Kind string

const (
	KindWelcome   Kind = "welcome"
	KindVerifyOTP Kind = "verify_otp"
	KindResetOTP  Kind = "reset_otp"
)

type Message struct {
	Kind      Kind      `json:"kind"`
	To        string    `json:"to"`
	Name      string    `json:"name,omitempty"`
	OTP       string    `json:"otp,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ErrUndeliverable marks a message no retry can deliver, such as one with a
// recipient the mailer rejects.
var ErrUndeliverable = errors.New("undeliverable message")

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

var (
	subjects = map[Kind]string{
		KindWelcome:   "Welcome to Authentication",
		KindVerifyOTP: "Account Verification OTP",
		KindResetOTP:  "Password Reset OTP",
	}

	bodies = template.Must(template.New("mail").Parse(`
{{define "welcome"}}<h2>Welcome, {{.Name}}!</h2>
<p>Your account has been successfully created with email: <strong>{{.To}}</strong>.</p>
<p>Thank you for joining us.</p>{{end}}
{{define "verify_otp"}}<h2>Verify your email</h2>
<p>You are receiving this because a verification was requested for <strong>{{.To}}</strong>.</p>
<p>Use this code to verify your account:</p>
<p style="font-size:22px;letter-spacing:4px"><strong>{{.OTP}}</strong></p>
<p>The code is valid until {{.Expires}}.</p>{{end}}
{{define "reset_otp"}}<h2>Reset your password</h2>
<p>A password reset was requested for <strong>{{.To}}</strong>.</p>
<p>Use this code to reset your password:</p>
<p style="font-size:22px;letter-spacing:4px"><strong>{{.OTP}}</strong></p>
<p>The code is valid until {{.Expires}}. If you did not request a reset, ignore this email.</p>{{end}}
`))
)

// Render returns the subject and HTML body for m.
func Render(m Message) (subject, body string, err error) {
	subject, ok := subjects[m.Kind]
	if !ok {
		return "", "", fmt.Errorf("notify: unknown message kind %q", m.Kind)
	}
	var buf bytes.Buffer
	data := struct {
		Message
		Expires string
	}{Message: m, Expires: m.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")}
	if err := bodies.ExecuteTemplate(&buf, string(m.Kind), data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
