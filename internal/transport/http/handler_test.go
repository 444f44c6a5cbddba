package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"quiz-results-service/internal/app"
	"quiz-results-service/internal/cachekey"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/infra/memory"
)

type fixture struct {
	server *httptest.Server
	cache  *memory.ResultCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := memory.NewDirectory(testCatalog())
	store := memory.NewResultStore()
	cache := memory.NewResultCache(time.Hour)
	quizzes := memory.NewQuizRepository(dir, time.Minute)

	submissions := app.NewSubmissionService(quizzes, dir, store, cache, logger)
	queries := app.NewResultQueryService(dir, cache, logger)
	analytics := app.NewAnalyticsService(dir, memory.NewAnalytics(store, dir))

	router := NewRouter(NewHandler(submissions, queries, analytics, logger), NewWSHandler(submissions, logger))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return fixture{server: server, cache: cache}
}

func (f fixture) do(t *testing.T, method, path string, userID int64, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != 0 {
		req.Header.Set(UserHeader, strconv.FormatInt(userID, 10))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPassQuizThenExportCSV(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/results", 7, `{"quiz_id":5,"options_ids":[10,30]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `"score":1.0`) {
		t.Fatalf("expected perfect score in %s", raw)
	}

	resp = f.do(t, http.MethodGet, "/companies/acme/quizzes/5/results?format=csv", 1, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "quiz_id,quiz_name,quiz_description,company_id") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "5,Arithmetic,") || !strings.Contains(lines[1], ",1.0,") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestResultQueriesStatusCodes(t *testing.T) {
	f := newFixture(t)
	if resp := f.do(t, http.MethodPost, "/results", 7, `{"quiz_id":5,"options_ids":[11,30]}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed submission failed: %d", resp.StatusCode)
	}

	tests := []struct {
		name   string
		path   string
		user   int64
		status int
	}{
		{name: "own results", path: "/results/me", user: 7, status: http.StatusOK},
		{name: "nothing cached", path: "/results/me", user: 1, status: http.StatusNotFound},
		{name: "owner reads company", path: "/companies/acme/results", user: 1, status: http.StatusOK},
		{name: "plain member denied", path: "/companies/acme/results", user: 7, status: http.StatusForbidden},
		{name: "other company denied", path: "/companies/acme/results", user: 9, status: http.StatusForbidden},
		{name: "admin reads user quiz", path: "/companies/acme/users/7/quizzes/5/result", user: 8, status: http.StatusOK},
		{name: "unknown company", path: "/companies/initech/results", user: 1, status: http.StatusNotFound},
		{name: "missing principal", path: "/results/me", user: 0, status: http.StatusBadRequest},
		{name: "bad quiz id", path: "/companies/acme/quizzes/five/results", user: 1, status: http.StatusBadRequest},
		{name: "company average", path: "/analytics/companies/2/averages", user: 1, status: http.StatusOK},
		{name: "last attempts denied", path: "/analytics/companies/2/last-attempts", user: 9, status: http.StatusForbidden},
		{name: "own average", path: "/analytics/me/average", user: 7, status: http.StatusOK},
		{name: "bad window", path: "/analytics/companies/2/recent?window=-1h", user: 1, status: http.StatusBadRequest},
		{name: "recent quiz averages", path: "/analytics/companies/2/users/7/quizzes/recent", user: 8, status: http.StatusOK},
		{name: "recent quiz averages empty", path: "/analytics/companies/2/users/8/quizzes/recent", user: 1, status: http.StatusNotFound},
		{name: "recent quiz averages denied", path: "/analytics/companies/2/users/7/quizzes/recent", user: 7, status: http.StatusForbidden},
		{name: "recent quiz averages bad window", path: "/analytics/companies/2/users/7/quizzes/recent?window=soon", user: 1, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, tc.path, tc.user, "")
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestUserRecentQuizAverages(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/results", 7, `{"quiz_id":5,"options_ids":[11,30]}`)

	resp := f.do(t, http.MethodGet, "/analytics/companies/2/users/7/quizzes/recent?window=1h", 1, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got []domain.QuizAverage
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []domain.QuizAverage{{UserID: 7, QuizID: 5, QuizName: "Arithmetic", Average: 0.5}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestPassQuizRejectsMismatchedOptions(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/results", 7, `{"quiz_id":5,"options_ids":[10]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp = f.do(t, http.MethodPost, "/results", 9, `{"quiz_id":5,"options_ids":[10,30]}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for outsider, got %d", resp.StatusCode)
	}
}

func TestCacheKeysAreNotDeletableOverHTTP(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/results", 7, `{"quiz_id":5,"options_ids":[10,30]}`)

	key := cachekey.ResultKey(5, 7, 2)
	for _, userID := range []int64{0, 1} {
		resp := f.do(t, http.MethodDelete, "/cache/"+key, userID, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for user %d, got %d", userID, resp.StatusCode)
		}
	}
	if _, ok, _ := f.cache.Get(context.Background(), key); !ok {
		t.Fatalf("expected key to survive")
	}
}

func TestWebSocketSubmitFlow(t *testing.T) {
	f := newFixture(t)

	u := "ws" + f.server.URL[len("http"):] + "/ws?quizId=5&userId=7"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	submit := map[string]any{
		"type":    "submit",
		"payload": map[string]any{"options_ids": []int64{10, 31}},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	typ, payload := readNext(t, conn)
	if typ != "result" {
		t.Fatalf("expected result, got %s", typ)
	}
	if payload["score"] != 0.5 {
		t.Fatalf("expected score 0.5, got %v", payload["score"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	typ, payload = readNext(t, conn)
	if typ != "error" || payload["status"] != float64(http.StatusBadRequest) {
		t.Fatalf("expected bad request error, got %s %v", typ, payload)
	}
}

func TestWebSocketRequiresQuiz(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/ws", 7, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func testCatalog() domain.Catalog {
	return domain.Catalog{
		Users: []domain.User{
			{ID: 1, Email: "owner@acme.test"},
			{ID: 7, Email: "member@acme.test"},
			{ID: 8, Email: "admin@acme.test"},
			{ID: 9, Email: "owner@globex.test"},
		},
		Companies: []domain.Company{
			{ID: 2, Name: "acme", Description: "Acme Corp", OwnerID: 1},
			{ID: 3, Name: "globex", Description: "Globex", OwnerID: 9},
		},
		Memberships: []domain.Membership{
			{UserID: 7, CompanyID: 2, Role: domain.RoleMember},
			{UserID: 8, CompanyID: 2, Role: domain.RoleAdmin},
		},
		Quizzes: []domain.Quiz{{
			ID:        5,
			CompanyID: 2,
			Name:      "Arithmetic",
			Questions: []domain.Question{
				{ID: 1, Text: "2 + 2?", Options: []domain.Option{{ID: 10, Text: "4", IsCorrect: true}, {ID: 11, Text: "3"}}},
				{ID: 2, Text: "3 * 3?", Options: []domain.Option{{ID: 30, Text: "9", IsCorrect: true}, {ID: 31, Text: "6"}}},
			},
		}},
	}
}
