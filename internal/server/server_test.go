package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/calcmaster/internal/auth"
	"github.com/abhisek/calcmaster/internal/dedup"
	"github.com/abhisek/calcmaster/internal/metrics"
	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/quiz"
	"github.com/abhisek/calcmaster/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type wireQuestion struct {
	ID          int      `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *metrics.Metrics) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:server_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := metrics.New()
	cfg := questiongen.DefaultConfig()
	cfg.Seed = 11
	cfg.Observer = m
	engine := questiongen.New(cfg)
	filter := dedup.NewFilter(dedup.NewMemoryStore(dedup.MemoryOptions{}), nil, m)

	return NewRouter(Deps{
		Quizzes:      quiz.NewBuilder(engine, filter, nil),
		Personalizer: personalize.New(st.ResultRepo(), engine, filter, nil),
		Auth:         auth.NewService(st.UserRepo(), st.SessionRepo(), auth.Config{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}, nil),
		Results:      st.ResultRepo(),
		Ping:         st.Ping,
		Metrics:      m,
		SessionTTL:   time.Hour,
	}), m
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	rec := do(t, r, "POST", "/api/auth/register", "", gin.H{
		"username": username, "email": username + "@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, "POST", "/api/auth/login", "", gin.H{"username": username, "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeQuestions(t *testing.T, rec *httptest.ResponseRecorder) []wireQuestion {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var qs []wireQuestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qs))
	return qs
}

func assertWellFormed(t *testing.T, qs []wireQuestion) {
	t.Helper()
	for i, q := range qs {
		assert.Equal(t, i+1, q.ID)
		assert.NotEmpty(t, q.Question)
		assert.Len(t, q.Options, 4)
		assert.Contains(t, q.Options, q.Correct)
		assert.NotEmpty(t, q.Explanation)
	}
}

func TestHealthcheck(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := do(t, r, "GET", "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProtectedRoutesNeedAuth(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{
		"/api/auth/me",
		"/api/questions/general",
		"/api/questions/derivatives/easy",
		"/api/stats/general",
	} {
		rec := do(t, r, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := do(t, r, "GET", "/api/auth/me", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, "POST", "/api/auth/register", "", gin.H{"username": "ab", "email": "a@b.co", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username")

	token := signUp(t, r, "ada")

	rec = do(t, r, "POST", "/api/auth/register", "", gin.H{"username": "ada", "email": "x@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate username")

	rec = do(t, r, "POST", "/api/auth/login", "", gin.H{"username": "ada", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, r, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"ada"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = do(t, r, "POST", "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginSetsCookie(t *testing.T) {
	r, _ := newTestRouter(t)
	signUp(t, r, "ada")

	rec := do(t, r, "POST", "/api/auth/login", "", gin.H{"username": "ada", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	r.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestTopicQuiz(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	for _, path := range []string{
		"/api/questions/derivatives/easy",
		"/api/questions/integrals/hard",
		"/api/questions/limits/basic",
		"/api/questions/critical-points/medium",
		"/api/questions/limits/whatever",
		"/api/questions/criticalpoints",
		"/api/questions/integrals",
	} {
		qs := decodeQuestions(t, do(t, r, "GET", path, token, nil))
		assert.NotEmpty(t, qs, path)
		assert.LessOrEqual(t, len(qs), quiz.TopicSize, path)
		assertWellFormed(t, qs)
	}

	rec := do(t, r, "GET", "/api/questions/series/easy", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTopicQuizHasNoRepeats(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	qs := decodeQuestions(t, do(t, r, "GET", "/api/questions/derivatives/basic", token, nil))
	seen := map[string]bool{}
	for _, q := range qs {
		fp := dedup.Fingerprint(q.Question)
		assert.False(t, seen[fp], "repeat: %s", q.Question)
		seen[fp] = true
	}
}

func TestGeneralQuiz(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	qs := decodeQuestions(t, do(t, r, "GET", "/api/questions/general", token, nil))
	assert.NotEmpty(t, qs)
	assert.LessOrEqual(t, len(qs), quiz.GeneralSize)
	assertWellFormed(t, qs)
}

func TestPersonalizedQuiz(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	rec := do(t, r, "GET", "/api/questions/personalized", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Questions []wireQuestion `json:"questions"`
		QuizInfo  quizInfo       `json:"quiz_info"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, len(resp.Questions), personalize.MinFallback)
	assert.Equal(t, len(resp.Questions), resp.QuizInfo.TotalQuestions)
	assert.Equal(t, questiongen.TopicDerivatives, resp.QuizInfo.FocusTopic)
	assert.Equal(t, "personalized", resp.QuizInfo.QuizType)
	assertWellFormed(t, resp.Questions)
}

func TestSaveResultAndStats(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	for _, body := range []gin.H{
		{"topic": "integrals", "score": 3, "total_questions": 10, "time_spent": 120},
		{"topic": "integrals", "score": 5, "total_questions": 10, "difficulty": "hard"},
		{"topic": "limits", "score": 9, "total_questions": 10},
		{"topic": "limits", "score": 8, "total_questions": 10, "details": gin.H{"difficulty": "easy"}},
	} {
		rec := do(t, r, "POST", "/api/save-result", token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"result_id"`)
	}

	rec := do(t, r, "POST", "/api/save-result", token, gin.H{"topic": "limits", "score": 11, "total_questions": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, r, "POST", "/api/save-result", token, gin.H{"topic": "limits", "total_questions": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "score is required")

	rec = do(t, r, "GET", "/api/stats/general", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var general store.GeneralStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &general))
	assert.Equal(t, store.GeneralStats{TotalQuizzes: 4, TotalQuestions: 40, TotalCorrect: 25, AverageScore: 62.5}, general)

	rec = do(t, r, "GET", "/api/stats/by-topic", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var byTopic []store.TopicStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byTopic))
	require.Len(t, byTopic, 2)
	assert.Equal(t, "limits", byTopic[0].Topic)

	rec = do(t, r, "GET", "/api/stats/recent?limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recent []store.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recent))
	assert.Len(t, recent, 2)

	rec = do(t, r, "GET", "/api/stats/progress?days=7", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var days []store.DayProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 1)
	assert.Equal(t, 4, days[0].Quizzes)

	rec = do(t, r, "GET", "/api/personalized/analysis", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var analysis personalize.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, questiongen.TopicIntegrals, analysis.WeakTopic)
	assert.Equal(t, 40.0, analysis.AvgScore)
	assert.True(t, analysis.NeedsImprovement)

	rec = do(t, r, "GET", "/api/questions/personalized", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"focus_topic":"integrals"`)
}

func TestSaveResultCanonicalTopic(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	for _, body := range []gin.H{
		{"topic": "critical-points", "score": 2, "total_questions": 10},
		{"topic": "critical_points", "score": 2, "total_questions": 10},
		{"topic": "derivatives", "score": 9, "total_questions": 10},
		{"topic": "derivatives", "score": 9, "total_questions": 10},
	} {
		rec := do(t, r, "POST", "/api/save-result", token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := do(t, r, "POST", "/api/save-result", token, gin.H{"topic": "foo", "score": 1, "total_questions": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, "GET", "/api/stats/by-topic", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var byTopic []store.TopicStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byTopic))
	require.Len(t, byTopic, 2)
	topics := []string{byTopic[0].Topic, byTopic[1].Topic}
	assert.ElementsMatch(t, []string{"criticalpoints", "derivatives"}, topics)

	rec = do(t, r, "GET", "/api/personalized/analysis", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var analysis personalize.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, questiongen.TopicCriticalPoints, analysis.WeakTopic)
	assert.Equal(t, 20.0, analysis.AvgScore)
}

func TestEmptyStatsAreArrays(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")

	for _, path := range []string{"/api/stats/recent", "/api/stats/by-topic", "/api/stats/progress"} {
		rec := do(t, r, "GET", path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	token := signUp(t, r, "ada")
	decodeQuestions(t, do(t, r, "GET", "/api/questions/general", token, nil))

	rec := do(t, r, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `calcmaster_quizzes_served_total{kind="general"} 1`)
	assert.Contains(t, body, "calcmaster_questions_generated_total")
	assert.Contains(t, body, `calcmaster_http_requests_total{route="/api/questions/general",status="200"} 1`)
}
