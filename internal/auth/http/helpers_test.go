package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/mail"
	"github.com/aussiebroadwan/devnet/internal/auth/service"
	"github.com/aussiebroadwan/devnet/internal/auth/session"
	"github.com/aussiebroadwan/devnet/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
	"github.com/aussiebroadwan/devnet/pkg/metricsx"
	"github.com/aussiebroadwan/devnet/pkg/slogx"
)

var dbSeq atomic.Int64

type mailbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (m *mailbox) Enqueue(msg mail.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return true
}

func (m *mailbox) LastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if m.msgs[i].Data.OTP != "" {
			return m.msgs[i].Data.OTP
		}
	}
	t.Fatal("no mail with a code")
	return ""
}

// fakeProvider stands in for Google. Only the code "good-code" exchanges.
type fakeProvider struct {
	identity domain.OAuthIdentity
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.test/o/oauth2/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (domain.OAuthIdentity, error) {
	if code != "good-code" {
		return domain.OAuthIdentity{}, domain.Fail(domain.CodeInvalidToken)
	}
	return p.identity, nil
}

type testServer struct {
	router  *Router
	store   *sqlite.Store
	redis   *miniredis.Miniredis
	mail    *mailbox
	metrics *metricsx.Metrics
}

func newTestServer(t *testing.T, configure ...func(*Router)) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(fmt.Sprintf("file:http-test-%d?mode=memory&cache=shared", dbSeq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sessions := session.NewRedisStore(rdb, "")

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{Secret: []byte("http-test-secret-http-test-secret!!")})
	require.NoError(t, err)

	hasher, err := cryptox.NewPasswordHasher(bcrypt.MinCost, nil)
	require.NoError(t, err)

	box := &mailbox{}
	metrics := metricsx.New("devnet")
	svc := &service.AuthService{
		Store:    st,
		OTP:      &service.OTPService{Store: st, TTL: domain.DefaultOTPTTL},
		Sessions: sessions,
		Tokens:   codec,
		Hasher:   hasher,
		Mail:     box,
		Metrics:  metrics,
	}

	r := NewRouter(svc, st, sessions, "test", slogx.Discard(), metrics)
	r.FrontendCallbackURL = "https://app.example.test/auth/callback"
	for _, fn := range configure {
		fn(r)
	}
	r.ApplyRoutes()

	return &testServer{router: r, store: st, redis: mr, mail: box, metrics: metrics}
}

// do sends a request through the full middleware chain. body is JSON encoded
// unless it is already a string.
func (s *testServer) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// withCookie sends a body-less request authenticated only by cookie, the way
// a browser holding an HttpOnly session does.
func (s *testServer) withCookie(t *testing.T, method, path string, c *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(c)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// requireFailure checks status and error_code of a failure envelope.
func requireFailure(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, "body: %s", rec.Body.String())
	e := decode[authsdk.APIError](t, rec)
	require.Equal(t, "failure", e.Status)
	require.Equal(t, code, e.Code)
}

func (s *testServer) signUp(t *testing.T, email, username, password string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", authsdk.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Grace",
		LastName:  "Hopper",
		Password:  password,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/verification/verify",
		map[string]string{"email": email, "otp": s.mail.LastCode(t)}, "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) authsdk.TokenResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/token", authsdk.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	return decode[authsdk.TokenResponse](t, rec)
}

func otpNumber(t *testing.T, code string) int {
	t.Helper()
	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	return n
}
