package http_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/authflow/internal/auth"
	api "github.com/tazhibayda/authflow/internal/http"
	"github.com/tazhibayda/authflow/internal/notify"
	"github.com/tazhibayda/authflow/internal/repo"
	"github.com/tazhibayda/authflow/internal/security"
)

const testOTP = "424242"

type mailbox struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (m *mailbox) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *mailbox) count(kind notify.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.msgs {
		if msg.Kind == kind {
			n++
		}
	}
	return n
}

type testEnv struct {
	T      *testing.T
	Store  *repo.MemoryStore
	Mail   *mailbox
	Router *gin.Engine
}

type envOpts struct {
	limiter api.Limiter
	issuer  *security.Issuer
}

func genRSA(t *testing.T) string {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rsa.pem")
	b := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k)})
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEnv(t *testing.T, opts ...func(*envOpts)) *testEnv {
	t.Helper()
	o := envOpts{issuer: security.NewHS256Issuer("test-secret", 0)}
	for _, fn := range opts {
		fn(&o)
	}

	gin.SetMode(gin.TestMode)
	store := repo.NewMemoryStore()
	mail := &mailbox{}
	svc := auth.NewService(store, o.issuer, security.FixedOTP(testOTP), mail, auth.Config{BcryptCost: 4})
	h := api.NewHandler(svc, store, o.issuer, api.CookieFor(false))
	r := api.NewRouter(h, api.RouterConfig{
		Service:     "auth-test",
		CORSOrigins: []string{"http://localhost:5173"},
		Limiter:     o.limiter,
	})
	return &testEnv{T: t, Store: store, Mail: mail, Router: r}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// withCookie sends the session the way a browser would.
func withCookie(tok string) map[string]string {
	return map[string]string{"Cookie": api.CookieName + "=" + tok}
}

func withBearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

type respBody struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token"`
	UserData struct {
		Name              string `json:"name"`
		Email             string `json:"email"`
		IsAccountVerified bool   `json:"isAccountVerified"`
	} `json:"userData"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) respBody {
	t.Helper()
	var b respBody
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return b
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == api.CookieName {
			return c
		}
	}
	return nil
}

// register creates a user and returns its session token.
func (e *testEnv) register(name, email, pw string) string {
	e.T.Helper()
	w := e.do("POST", "/api/auth/register", `{"name":"`+name+`","email":"`+email+`","password":"`+pw+`"}`, nil)
	if w.Code != http.StatusOK {
		e.T.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	return decode(e.T, w).Token
}

func expect(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("want %d, got %d: %s", code, w.Code, w.Body.String())
	}
	b := decode(t, w)
	if b.Success != (code == http.StatusOK) {
		t.Fatalf("success=%v for status %d", b.Success, code)
	}
	if msg != "" && b.Message != msg {
		t.Fatalf("message: want %q, got %q", msg, b.Message)
	}
}
