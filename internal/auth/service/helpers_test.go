package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/devnet/internal/auth/domain"
	"github.com/aussiebroadwan/devnet/internal/auth/mail"
	"github.com/aussiebroadwan/devnet/internal/auth/session"
	"github.com/aussiebroadwan/devnet/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/devnet/pkg/cryptox"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
)

var dbSeq atomic.Int64

// clock is a settable time source shared by the service, the OTP manager and
// the token codec.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// mailbox records queued mail instead of sending it.
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

func (m *mailbox) Last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.msgs, "no mail queued")
	return m.msgs[len(m.msgs)-1]
}

func (m *mailbox) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

// LastCode returns the OTP of the most recent mail that carried one.
func (m *mailbox) LastCode(t *testing.T) int {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if m.msgs[i].Data.OTP != "" {
			code, err := strconv.Atoi(m.msgs[i].Data.OTP)
			require.NoError(t, err)
			return code
		}
	}
	t.Fatal("no mail with a code")
	return 0
}

type fixture struct {
	svc   *AuthService
	store *sqlite.Store
	redis *miniredis.Miniredis
	mail  *mailbox
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(fmt.Sprintf("file:service-test-%d?mode=memory&cache=shared", dbSeq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := &clock{t: time.Now().UTC().Truncate(time.Millisecond)}

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		Secret: []byte("test-secret-test-secret-test-secret!"),
		Now:    clk.Now,
	})
	require.NoError(t, err)

	hasher, err := cryptox.NewPasswordHasher(bcrypt.MinCost, []byte("pepper"))
	require.NoError(t, err)

	box := &mailbox{}
	svc := &AuthService{
		Store:    st,
		OTP:      &OTPService{Store: st, TTL: domain.DefaultOTPTTL, Now: clk.Now},
		Sessions: session.NewRedisStore(rdb, ""),
		Tokens:   codec,
		Hasher:   hasher,
		Mail:     box,
		Now:      clk.Now,
	}

	return &fixture{svc: svc, store: st, redis: mr, mail: box, clock: clk}
}

func (f *fixture) register(t *testing.T, email, username, password string) domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  password,
	})
	require.NoError(t, err)
	return u
}

// verifiedUser registers and verifies an account in one go.
func (f *fixture) verifiedUser(t *testing.T, email, username, password string) domain.User {
	t.Helper()
	u := f.register(t, email, username, password)
	_, err := f.svc.VerifyEmail(context.Background(), email, f.mail.LastCode(t))
	require.NoError(t, err)
	return u
}

func (f *fixture) login(t *testing.T, email, password string) domain.TokenPair {
	t.Helper()
	pair, err := f.svc.Login(context.Background(), email, password)
	require.NoError(t, err)
	return pair
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, domain.CodeOf(err), "error: %v", err)
}
