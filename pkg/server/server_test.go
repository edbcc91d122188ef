package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/config"
	"github.com/taskriser/taskriser/pkg/csrf"
	rlmemory "github.com/taskriser/taskriser/pkg/ratelimit/memory"
	"github.com/taskriser/taskriser/pkg/storage/memory"
)

// testConfig returns a server config with limits high enough that the
// general limiter never interferes with unrelated tests.
func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Auth.JWTSecret = "test-jwt-secret"
	cfg.Auth.SessionSecret = "test-session-secret"
	cfg.Gateway.InternalKey = "test-internal-key"
	cfg.RateLimit.GeneralMax = 10000
	cfg.RateLimit.LoginMax = 10000
	return cfg
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	srv, err := New(cfg, memory.New(), rlmemory.New(), nil)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a JSON request with the double-submit CSRF pair set and
// an optional bearer token.
func doJSON(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: "test-csrf-token"})
	req.Header.Set(csrf.HeaderName, "test-csrf-token")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

func decodeError(t *testing.T, resp *http.Response) *api.APIError {
	t.Helper()
	var errResp api.ErrorResponse
	decodeJSON(t, resp, &errResp)
	if errResp.Error == nil {
		t.Fatal("error object is nil")
	}
	return errResp.Error
}

// register creates a user and returns nothing; login returns the token.
func register(t *testing.T, base, username, email, pw string) {
	t.Helper()
	resp := doJSON(t, "POST", base+"/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": pw,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("register: status %d: %s", resp.StatusCode, body)
	}
}

func login(t *testing.T, base, email, pw string) string {
	t.Helper()
	resp := doJSON(t, "POST", base+"/api/auth/login", "", map[string]string{
		"email": email, "password": pw,
	})
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("login: status %d: %s", resp.StatusCode, body)
	}
	var lr struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &lr)
	if lr.Token == "" {
		t.Fatal("login returned no token")
	}
	return lr.Token
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/auth/register", "", map[string]string{
		"username": "jinwoo", "email": "jinwoo@hunters.example", "password": "Arise!Shadow1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		User struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Level    int    `json:"level"`
			Rank     string `json:"rank"`
			TotalExp int64  `json:"totalExp"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &body)
	if body.User.ID == 0 || body.User.Username != "jinwoo" {
		t.Errorf("user = %+v", body.User)
	}
	if body.User.Level != 1 || body.User.Rank != "E" {
		t.Errorf("level/rank = %d/%q, want 1/E", body.User.Level, body.User.Rank)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/auth/register", "", map[string]string{
		"username": "jinwoo", "email": "jinwoo@hunters.example", "password": "password",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Type != api.ErrorTypeInvalidRequest || apiErr.Param != "password" {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "POST", ts.URL+"/api/auth/register", "", map[string]string{
		"username": "jinwoo", "email": "other@hunters.example", "password": "Arise!Shadow1",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp); apiErr.Type != api.ErrorTypeConflict {
		t.Errorf("error.type = %q, want conflict", apiErr.Type)
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
		"email": "jinwoo@hunters.example", "password": "Arise!Shadow1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var sessionCookie bool
	for _, c := range resp.Cookies() {
		if c.Name == "taskriser_session" {
			sessionCookie = true
		}
	}
	if !sessionCookie {
		t.Error("login did not set a session cookie")
	}

	var lr struct {
		Token               string `json:"token"`
		WeakPasswordWarning string `json:"weakPasswordWarning"`
		User                struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &lr)
	if lr.Token == "" {
		t.Error("no token in response")
	}
	if lr.WeakPasswordWarning != "" {
		t.Errorf("unexpected weak password warning for a strong password: %q", lr.WeakPasswordWarning)
	}
}

// Wrong password and unknown email must be indistinguishable.
func TestLoginGenericRejection(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")

	wrongPw := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
		"email": "jinwoo@hunters.example", "password": "Wrong!Password1",
	})
	unknown := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
		"email": "ghost@hunters.example", "password": "Wrong!Password1",
	})

	if wrongPw.StatusCode != http.StatusUnauthorized || unknown.StatusCode != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPw.StatusCode, unknown.StatusCode)
	}
	msgA := decodeError(t, wrongPw).Message
	msgB := decodeError(t, unknown).Message
	if msgA != msgB {
		t.Errorf("messages differ: %q vs %q", msgA, msgB)
	}
}

func TestAccountLockout(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")

	for i := 0; i < 5; i++ {
		resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
			"email": "jinwoo@hunters.example", "password": "Wrong!Password1",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	// Even the correct password is rejected while locked.
	resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
		"email": "jinwoo@hunters.example", "password": "Arise!Shadow1",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("locked attempt: status = %d, want 429", resp.StatusCode)
	}
	apiErr := decodeError(t, resp)
	if apiErr.RemainingMinutes < 1 || apiErr.RemainingMinutes > 15 {
		t.Errorf("remainingMinutes = %d, want within [1, 15]", apiErr.RemainingMinutes)
	}
}

// With production login limits the lockout's answer must still win:
// the 6th attempt on a locked account reports remaining minutes, not
// the limiter's retry-after.
func TestLockoutBeatsLoginRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.RateLimit.LoginMax = 5
		c.RateLimit.LoginWindow = 5 * time.Minute
	})
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")

	for i := 0; i < 5; i++ {
		resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
			"email": "jinwoo@hunters.example", "password": "Wrong!Password1",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
		"email": "jinwoo@hunters.example", "password": "Arise!Shadow1",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("6th attempt: status = %d, want 429", resp.StatusCode)
	}
	apiErr := decodeError(t, resp)
	if apiErr.RemainingMinutes < 1 {
		t.Errorf("remainingMinutes = %d, want >= 1 from the lockout, not the limiter", apiErr.RemainingMinutes)
	}
}

func TestLoginRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.RateLimit.LoginMax = 2
		c.RateLimit.LoginWindow = time.Minute
	})

	for i := 0; i < 2; i++ {
		resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
			"email": "ghost@hunters.example", "password": "Wrong!Password1",
		})
		resp.Body.Close()
	}

	resp := doJSON(t, "POST", ts.URL+"/api/auth/login", "", map[string]string{
		"email": "ghost@hunters.example", "password": "Wrong!Password1",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
	if apiErr := decodeError(t, resp); apiErr.RetryAfterSeconds < 1 {
		t.Errorf("retryAfterSeconds = %d, want >= 1", apiErr.RetryAfterSeconds)
	}
}

func TestCSRFTokenEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/csrf/token")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}

	var cookieVal string
	for _, c := range resp.Cookies() {
		if c.Name == csrf.CookieName {
			cookieVal = c.Value
		}
	}
	if cookieVal == "" {
		t.Fatal("no CSRF cookie set")
	}

	var body struct {
		Token string `json:"csrfToken"`
	}
	decodeJSON(t, resp, &body)
	if body.Token != cookieVal {
		t.Error("body token does not match the cookie value")
	}
}

func TestProtectedEndpointRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "GET", ts.URL+"/api/tasks", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp); apiErr.Message != "authentication token required" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestMutationRequiresCSRF(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	// Bearer token alone, no CSRF pair.
	req, _ := http.NewRequest("POST", ts.URL+"/api/tasks", bytes.NewReader([]byte(`{"title":"x"}`)))
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp); apiErr.Type != api.ErrorTypeForbidden {
		t.Errorf("error.type = %q, want forbidden", apiErr.Type)
	}
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	// Create.
	resp := doJSON(t, "POST", ts.URL+"/api/tasks", tok, map[string]any{
		"title": "clear the dungeon", "difficulty": api.DifficultyB, "priority": api.PriorityHigh,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", resp.StatusCode)
	}
	var task api.Task
	decodeJSON(t, resp, &task)
	if task.ExpReward != 40 {
		t.Errorf("ExpReward = %d, want 40 for B-Rank", task.ExpReward)
	}
	if task.Status != api.StatusPending {
		t.Errorf("Status = %q, want default Pending", task.Status)
	}

	// List.
	resp = doJSON(t, "GET", ts.URL+"/api/tasks", tok, nil)
	var list struct {
		Tasks []api.Task `json:"tasks"`
	}
	decodeJSON(t, resp, &list)
	if len(list.Tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(list.Tasks))
	}

	// Complete, which awards EXP.
	resp = doJSON(t, "PUT", fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), tok, map[string]string{
		"status": api.StatusCompleted,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status = %d, want 200", resp.StatusCode)
	}
	var updated taskUpdateResponse
	decodeJSON(t, resp, &updated)
	if updated.Task.Status != api.StatusCompleted {
		t.Errorf("Status = %q, want Completed", updated.Task.Status)
	}
	if updated.ExpGained != 40 || updated.TotalExp != 40 {
		t.Errorf("reward = %d/%d, want 40/40", updated.ExpGained, updated.TotalExp)
	}

	// Completing again must not award twice.
	resp = doJSON(t, "PUT", fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), tok, map[string]string{
		"status": api.StatusCompleted,
	})
	var again taskUpdateResponse
	decodeJSON(t, resp, &again)
	if again.ExpGained != 0 {
		t.Errorf("second completion awarded %d EXP, want 0", again.ExpGained)
	}

	// Delete.
	resp = doJSON(t, "DELETE", fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), tok, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, "GET", fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), tok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTaskInvalidDifficulty(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "POST", ts.URL+"/api/tasks", tok, map[string]string{
		"title": "x", "difficulty": "SS-Rank",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if apiErr := decodeError(t, resp); apiErr.Param != "difficulty" {
		t.Errorf("param = %q, want difficulty", apiErr.Param)
	}
}

// A hunter must not be able to see or touch another hunter's tasks.
func TestTaskOwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	register(t, ts.URL, "chae", "chae@hunters.example", "Arise!Shadow1")
	owner := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")
	intruder := login(t, ts.URL, "chae@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "POST", ts.URL+"/api/tasks", owner, map[string]string{"title": "secret quest"})
	var task api.Task
	decodeJSON(t, resp, &task)

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		var body any
		if method == "PUT" {
			body = map[string]string{"title": "stolen"}
		}
		resp := doJSON(t, method, fmt.Sprintf("%s/api/tasks/%d", ts.URL, task.ID), intruder, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s foreign task: status = %d, want 404", method, resp.StatusCode)
		}
	}
}

func TestMeAndProfile(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "GET", ts.URL+"/api/users/me", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status = %d, want 200", resp.StatusCode)
	}
	var me struct {
		User struct {
			Username     string `json:"username"`
			NextLevelExp int64  `json:"nextLevelExp"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &me)
	if me.User.Username != "jinwoo" {
		t.Errorf("username = %q", me.User.Username)
	}
	if me.User.NextLevelExp != 100 {
		t.Errorf("nextLevelExp = %d, want 100", me.User.NextLevelExp)
	}

	resp = doJSON(t, "PUT", ts.URL+"/api/users/profile", tok, map[string]string{
		"username": "shadow-monarch", "avatar": "igris.png",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: status = %d, want 200", resp.StatusCode)
	}
	var updated struct {
		User struct {
			Username string `json:"username"`
			Avatar   string `json:"avatar"`
		} `json:"user"`
	}
	decodeJSON(t, resp, &updated)
	if updated.User.Username != "shadow-monarch" || updated.User.Avatar != "igris.png" {
		t.Errorf("user = %+v", updated.User)
	}
}

func TestAddExpAndLevelUp(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "POST", ts.URL+"/api/users/exp", tok, map[string]int64{"exp": 150})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body expResponse
	decodeJSON(t, resp, &body)
	if body.User.TotalExp != 150 || body.User.Level != 2 {
		t.Errorf("user = totalExp %d level %d, want 150/2", body.User.TotalExp, body.User.Level)
	}
	if !body.LeveledUp {
		t.Error("LeveledUp = false, want true")
	}
	if body.User.Rank != "D" {
		t.Errorf("rank = %q, want D", body.User.Rank)
	}
}

func TestRankingPublic(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	register(t, ts.URL, "chae", "chae@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "chae@hunters.example", "Arise!Shadow1")
	resp := doJSON(t, "POST", ts.URL+"/api/users/exp", tok, map[string]int64{"exp": 500})
	resp.Body.Close()

	// No credential at all.
	public, err := http.Get(ts.URL + "/api/ranking")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if public.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", public.StatusCode)
	}

	var body struct {
		Ranking []struct {
			Username string `json:"username"`
			TotalExp int64  `json:"totalExp"`
			Rank     string `json:"rank"`
			Email    string `json:"email"`
		} `json:"ranking"`
	}
	decodeJSON(t, public, &body)
	if len(body.Ranking) != 2 {
		t.Fatalf("len(ranking) = %d, want 2", len(body.Ranking))
	}
	if body.Ranking[0].Username != "chae" || body.Ranking[0].Rank != "C" {
		t.Errorf("ranking[0] = %+v", body.Ranking[0])
	}
	for _, e := range body.Ranking {
		if e.Email != "" {
			t.Errorf("ranking leaks email %q", e.Email)
		}
	}
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "POST", ts.URL+"/api/auth/logout", tok, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

// Unmatched paths must answer with the structured envelope, never the
// mux's plain-text 404.
func TestUnknownPathStructured404(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts.URL, "jinwoo", "jinwoo@hunters.example", "Arise!Shadow1")
	tok := login(t, ts.URL, "jinwoo@hunters.example", "Arise!Shadow1")

	resp := doJSON(t, "GET", ts.URL+"/api/does-not-exist", tok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("api path: status = %d, want 404", resp.StatusCode)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Type != api.ErrorTypeNotFound || apiErr.Message != "cannot GET /api/does-not-exist" {
		t.Errorf("error = %+v", apiErr)
	}

	outside, err := http.Get(ts.URL + "/does-not-exist")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if outside.StatusCode != http.StatusNotFound {
		t.Fatalf("root path: status = %d, want 404", outside.StatusCode)
	}
	if apiErr := decodeError(t, outside); apiErr.Type != api.ErrorTypeNotFound {
		t.Errorf("error.type = %q, want not_found", apiErr.Type)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
