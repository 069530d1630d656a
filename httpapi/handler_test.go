package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goRecover "github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/directory"
	"github.com/MrEthical07/goRecover/internal/logging"
	"github.com/MrEthical07/goRecover/notify"
	"github.com/MrEthical07/goRecover/password"
	"github.com/MrEthical07/goRecover/tokenstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecovery struct {
	result    goRecover.Result
	available bool
	err       error
	gotEmail  string
	gotToken  string
	gotPass   string
	gotReqID  string
}

func (s *stubRecovery) CheckUserByEmail(ctx context.Context, email string) (goRecover.Result, error) {
	s.gotEmail = email
	return s.result, s.err
}

func (s *stubRecovery) CheckCooldown(ctx context.Context, email string) (goRecover.Result, error) {
	s.gotEmail = email
	return s.result, s.err
}

func (s *stubRecovery) IssueResetToken(ctx context.Context, email string) (goRecover.Result, error) {
	s.gotEmail = email
	return s.result, s.err
}

func (s *stubRecovery) CheckTokenAvailable(ctx context.Context, token string) (bool, error) {
	s.gotToken = token
	return s.available, s.err
}

func (s *stubRecovery) RedeemResetToken(ctx context.Context, token, newPassword string) (goRecover.Result, error) {
	s.gotToken, s.gotPass = token, newPassword
	return s.result, s.err
}

func newRouter(r Recovery) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(r, logging.Discard()).Register(router.Group("/password"))
	return router
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var out Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCheckPassesQueryEmail(t *testing.T) {
	stub := &stubRecovery{result: goRecover.Result{
		Success: true,
		User:    &goRecover.UserView{ID: 7, LoginName: "alice", Email: "alice@example.com"},
	}}
	w := do(t, newRouter(stub), http.MethodGet, "/password/check?email=alice@example.com", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", stub.gotEmail)
	res := decode(t, w)
	assert.True(t, res.Success)
	require.NotNil(t, res.User)
	assert.Equal(t, int64(7), res.User.ID)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestCooldownRoundsSecondsUp(t *testing.T) {
	stub := &stubRecovery{result: goRecover.Result{
		Code:              goRecover.CodeCooldownActive,
		Message:           "A reset email was sent recently. Try again in 30 seconds.",
		CooldownRemaining: 29*time.Second + 100*time.Millisecond,
	}}
	w := do(t, newRouter(stub), http.MethodGet, "/password/check_disable?email=a@b.com", "")

	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.False(t, res.Success)
	assert.Equal(t, goRecover.CodeCooldownActive, res.Code)
	assert.Equal(t, int64(30), res.CooldownRemainingSeconds)
}

func TestSendResetEmailRequiresBody(t *testing.T) {
	stub := &stubRecovery{}
	w := do(t, newRouter(stub), http.MethodPost, "/password/send_reset_email", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.gotEmail)
}

func TestResetPageReportsAvailability(t *testing.T) {
	stub := &stubRecovery{available: true}
	w := do(t, newRouter(stub), http.MethodGet, "/password/reset_page/abc123", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", stub.gotToken)
	assert.JSONEq(t, `{"available":true}`, w.Body.String())
}

func TestResetForwardsPolicyBounds(t *testing.T) {
	stub := &stubRecovery{result: goRecover.Result{
		Code:      goRecover.CodePasswordPolicyViolation,
		Message:   "password must be 8 to 20 characters",
		MinLength: 8,
		MaxLength: 20,
	}}
	w := do(t, newRouter(stub), http.MethodPost, "/password/reset", `{"token":"t","password":"short"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "short", stub.gotPass)
	res := decode(t, w)
	assert.Equal(t, 8, res.MinLength)
	assert.Equal(t, 20, res.MaxLength)
}

func TestInfrastructureErrorIs500(t *testing.T) {
	stub := &stubRecovery{err: errors.New("redis down")}
	router := newRouter(stub)

	for _, tc := range []struct {
		method, target, body string
	}{
		{http.MethodGet, "/password/check?email=a@b.com", ""},
		{http.MethodGet, "/password/reset_page/tok", ""},
		{http.MethodPost, "/password/reset", `{"token":"t","password":"p"}`},
	} {
		w := do(t, router, tc.method, tc.target, tc.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, tc.target)
		assert.NotContains(t, w.Body.String(), "redis down", tc.target)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	seen := make(chan string, 1)
	g := router.Group("/password")
	New(&stubRecovery{}, nil).Register(g)
	g.GET("/probe", func(c *gin.Context) {
		seen <- c.Writer.Header().Get(requestIDHeader)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/password/probe", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", <-seen)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

type captureSender struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (s *captureSender) Send(_ context.Context, n notify.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return nil
}

func (s *captureSender) last() notify.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notices[len(s.notices)-1]
}

func TestEndToEndReset(t *testing.T) {
	hasher, err := password.NewArgon2(password.Config{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)
	oldHash, err := hasher.Hash("Original1!")
	require.NoError(t, err)

	dir := directory.NewMemory()
	dir.Add(goRecover.Identity{ID: 1, LoginName: "alice", Email: "alice@example.com", PasswordHash: oldHash, RealName: "Alice"})

	cfg := goRecover.DefaultConfig()
	cfg.Reset.GatewayURL = "https://gw.example.com"
	sender := &captureSender{}
	engine, err := goRecover.New().
		WithConfig(cfg).
		WithTokenStore(tokenstore.NewMemoryStore()).
		WithDirectory(dir).
		WithNotifier(sender).
		WithHasher(hasher).
		WithLogger(logging.Discard()).
		Build()
	require.NoError(t, err)
	defer engine.Close()

	router := newRouter(engine)

	w := do(t, router, http.MethodPost, "/password/send_reset_email", `{"email":"Alice@Example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decode(t, w).Success)

	link, _ := sender.last().Params["redirectUrl"].(string)
	token := link[strings.LastIndex(link, "/")+1:]
	require.NotEmpty(t, token)

	w = do(t, router, http.MethodGet, "/password/check_disable?email=alice@example.com", "")
	assert.Equal(t, goRecover.CodeCooldownActive, decode(t, w).Code)

	w = do(t, router, http.MethodGet, "/password/reset_page/"+token, "")
	assert.JSONEq(t, `{"available":true}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/password/reset", `{"token":"`+token+`","password":"N3w-Secret!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "alice", res.User.LoginName)

	w = do(t, router, http.MethodGet, "/password/reset_page/"+token, "")
	assert.JSONEq(t, `{"available":false}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/password/reset", `{"token":"`+token+`","password":"N3w-Secret!"}`)
	assert.Equal(t, goRecover.CodeInvalidOrExpiredToken, decode(t, w).Code)
}

var errLimited = errors.New("limited")

type fakeThrottle struct {
	budget int
	err    error
}

func (f *fakeThrottle) Allow(context.Context, string) (time.Duration, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.budget <= 0 {
		return 1500 * time.Millisecond, errLimited
	}
	f.budget--
	return 0, nil
}

func throttledRouter(stub Recovery, th Throttle) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(stub, logging.Discard()).
		WithThrottle(th, func(err error) bool { return errors.Is(err, errLimited) }).
		Register(router.Group("/password"))
	return router
}

func TestThrottleRefusesOverBudget(t *testing.T) {
	router := throttledRouter(&stubRecovery{}, &fakeThrottle{budget: 1})

	w := do(t, router, http.MethodGet, "/password/check?email=a@b.com", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/password/check?email=a@b.com", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestThrottleFailureLetsRequestThrough(t *testing.T) {
	stub := &stubRecovery{}
	router := throttledRouter(stub, &fakeThrottle{err: errors.New("redis down")})

	w := do(t, router, http.MethodGet, "/password/check?email=a@b.com", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@b.com", stub.gotEmail)
}
