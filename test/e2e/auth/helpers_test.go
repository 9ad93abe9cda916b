//go:build e2e

package auth_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/devnet/internal/auth/app"
	"github.com/aussiebroadwan/devnet/pkg/authsdk"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * Redis, Postgres and a Mailpit SMTP catcher run in containers shared by
 * every test; each test gets its own in-process service on top of them.
 */

const (
	testPassword = "Secret123!"
	jwtSecret    = "e2e-secret-that-is-at-least-32-bytes-long"

	subjectVerify = "Verify your email"
	subjectReset  = "Reset your password"
)

var (
	infra  infrastructure
	userID atomic.Int64

	otpPattern = regexp.MustCompile(`\b(\d{6})\b`)
)

type infrastructure struct {
	redisURL    string
	postgresURL string
	mailHost    string
	mailPort    int
	mailAPI     string
}

// TestMain starts the shared containers once before all tests and
// terminates them after all tests complete.
func TestMain(m *testing.M) {
	ctx := context.Background()

	fmt.Fprintf(os.Stdout, "Starting auth service dependencies...")
	containers, err := startInfrastructure(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to start containers: %v\n", err)
		terminate(ctx, containers)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Stopping auth service dependencies...")
	terminate(ctx, containers)
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func startInfrastructure(ctx context.Context) ([]testcontainers.Container, error) {
	var containers []testcontainers.Container

	redis, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})
	if err != nil {
		return containers, fmt.Errorf("redis: %w", err)
	}
	containers = append(containers, redis)
	redisEndpoint, err := redis.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		return containers, err
	}
	infra.redisURL = "redis://" + redisEndpoint + "/0"

	pg, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "devnet_auth",
			"POSTGRES_USER":     "devnet",
			"POSTGRES_PASSWORD": "devnet",
		},
		// The server restarts once after initdb.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})
	if err != nil {
		return containers, fmt.Errorf("postgres: %w", err)
	}
	containers = append(containers, pg)
	pgEndpoint, err := pg.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		return containers, err
	}
	infra.postgresURL = "postgres://devnet:devnet@" + pgEndpoint + "/devnet_auth?sslmode=disable"

	mailpit, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "axllent/mailpit:latest",
		ExposedPorts: []string{"1025/tcp", "8025/tcp"},
		WaitingFor:   wait.ForHTTP("/livez").WithPort("8025/tcp"),
	})
	if err != nil {
		return containers, fmt.Errorf("mailpit: %w", err)
	}
	containers = append(containers, mailpit)
	host, err := mailpit.Host(ctx)
	if err != nil {
		return containers, err
	}
	smtpPort, err := mailpit.MappedPort(ctx, "1025")
	if err != nil {
		return containers, err
	}
	apiPort, err := mailpit.MappedPort(ctx, "8025")
	if err != nil {
		return containers, err
	}
	infra.mailHost = host
	infra.mailPort = smtpPort.Int()
	infra.mailAPI = fmt.Sprintf("http://%s:%s", host, apiPort.Port())

	return containers, nil
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

func terminate(ctx context.Context, containers []testcontainers.Container) {
	for _, c := range containers {
		if err := c.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
		}
	}
}

// testConfig is the service configuration for one test, pointing at the
// shared containers.
func testConfig(t *testing.T) app.Config {
	t.Helper()
	return app.Config{
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  5 * time.Second,
		HousekeepingInterval: time.Hour,

		DatabaseDriver: "postgres",
		DatabaseURL:    infra.postgresURL,

		RedisURL:         infra.redisURL,
		SessionKeyPrefix: fmt.Sprintf("e2e_sessions_%d:", time.Now().UnixNano()),

		JWTSecret:    jwtSecret,
		JWTAlgorithm: "HS256",
		AccessTTL:    time.Hour,
		RefreshTTL:   24 * time.Hour,
		OTPTTL:       5 * time.Minute,
		PepperFile:   filepath.Join(t.TempDir(), "pepper"),

		MailHost:     infra.mailHost,
		MailPort:     infra.mailPort,
		MailFrom:     "no-reply@devnet.test",
		MailFromName: "devnet",
		MailWorkers:  1,
		MailQueue:    16,
	}
}

// setupAuthService starts the service in process and returns a client for it.
func setupAuthService(t *testing.T) *authsdk.SDKClient {
	t.Helper()
	return setupAuthServiceWithConfig(t, testConfig(t))
}

func setupAuthServiceWithConfig(t *testing.T, cfg app.Config) *authsdk.SDKClient {
	t.Helper()

	application, err := app.New(cfg)
	require.NoError(t, err)
	application.Start()

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		if err := application.Shutdown(); err != nil {
			t.Logf("failed to shut down service: %v", err)
		}
	})

	return authsdk.NewSDKClient(server.URL)
}

// uniqueUser returns a registration request no other test uses.
func uniqueUser(t *testing.T) authsdk.RegisterRequest {
	t.Helper()
	n := userID.Add(1)
	stamp := time.Now().UnixNano() % 1_000_000
	return authsdk.RegisterRequest{
		Email:     fmt.Sprintf("user%d.%d@devnet.test", n, stamp),
		Username:  fmt.Sprintf("user_%d_%d", n, stamp),
		FirstName: "Test",
		LastName:  "User",
		Password:  testPassword,
	}
}

// registerVerified signs a user up, verifies the email with the mailed
// code and returns the registration.
func registerVerified(t *testing.T, client *authsdk.SDKClient) authsdk.RegisterRequest {
	t.Helper()
	ctx := t.Context()

	user := uniqueUser(t)
	resp, err := client.Register(ctx, user)
	require.NoError(t, err, "Register should succeed")
	require.Equal(t, user.Email, resp.Email)

	code := waitForOTP(t, user.Email, subjectVerify)
	_, err = client.VerifyEmail(ctx, user.Email, code)
	require.NoError(t, err, "Verification should succeed")

	return user
}

// performLogin authenticates a user and returns a session.
func performLogin(t *testing.T, client *authsdk.SDKClient, email, password string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), email, password)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, session, "Session should not be nil")
	return session
}

type mailpitSearch struct {
	Messages []struct {
		ID      string `json:"ID"`
		Subject string `json:"Subject"`
	} `json:"messages"`
}

type mailpitMessage struct {
	Text string `json:"Text"`
}

// waitForOTP polls Mailpit for the newest message to email with subject,
// extracts its code and deletes the recipient's mail so the next call only
// sees new messages.
func waitForOTP(t *testing.T, email, subject string) authsdk.OTPCode {
	t.Helper()

	query := url.Values{"query": {fmt.Sprintf("to:%q", email)}}
	var messageID string
	require.Eventually(t, func() bool {
		var found mailpitSearch
		if err := getJSON(t.Context(), infra.mailAPI+"/api/v1/search?"+query.Encode(), &found); err != nil {
			return false
		}
		// Newest first.
		for _, m := range found.Messages {
			if m.Subject == subject {
				messageID = m.ID
				return true
			}
		}
		return false
	}, 10*time.Second, 100*time.Millisecond, "no %q mail for %s", subject, email)

	var msg mailpitMessage
	require.NoError(t, getJSON(t.Context(), infra.mailAPI+"/api/v1/message/"+messageID, &msg))
	match := otpPattern.FindStringSubmatch(msg.Text)
	require.NotNil(t, match, "mail has no code: %s", msg.Text)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodDelete, infra.mailAPI+"/api/v1/search?"+query.Encode(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return authsdk.OTPCode(match[1])
}

func getJSON(ctx context.Context, target string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", target, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// wrongOTP returns a valid looking code different from code.
func wrongOTP(code authsdk.OTPCode) authsdk.OTPCode {
	if code == "111111" {
		return "222222"
	}
	return "111111"
}

// assertCode checks that err is an API failure with the given error code.
func assertCode(t *testing.T, err error, code string, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.True(t, authsdk.IsCode(err, code), "%s - want error code %q, got: %v", context, code, err)
}

// assertTokenResponse verifies a token response has all required fields.
func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.True(t, strings.Count(resp.AccessToken, ".") == 2, "Access token should be a JWT")
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
