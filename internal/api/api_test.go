package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mppise/eaappreciate/internal/accomplishments"
	"github.com/mppise/eaappreciate/internal/api/auth"
	"github.com/mppise/eaappreciate/internal/submission"
	"github.com/mppise/eaappreciate/pkg/models"
)

const testSecret = "test-secret"

type fakeGenerator struct {
	questions []string
	statement string
	post      string
}

func (g *fakeGenerator) GenerateContextualQuestions(ctx context.Context, statement string, impactType models.ImpactType, appreciation string) []string {
	return g.questions
}

func (g *fakeGenerator) GenerateStatement(ctx context.Context, draft models.AccomplishmentDraft) string {
	return g.statement
}

func (g *fakeGenerator) GenerateShareablePost(ctx context.Context, acc models.Accomplishment) string {
	return g.post
}

type fakeStore struct {
	records map[string]*models.Accomplishment
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*models.Accomplishment)}
}

func (s *fakeStore) Create(ctx context.Context, acc *models.Accomplishment) error {
	cp := *acc
	s.records[acc.ID] = &cp
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*models.Accomplishment, error) {
	acc, ok := s.records[id]
	if !ok {
		return nil, accomplishments.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *fakeStore) List(ctx context.Context, impactType models.ImpactType) ([]models.Accomplishment, error) {
	var out []models.Accomplishment
	for _, acc := range s.records {
		if impactType != "" && acc.ImpactType != impactType {
			continue
		}
		out = append(out, *acc)
	}
	return out, nil
}

func (s *fakeStore) IncrementCongratulations(ctx context.Context, id string) (int, error) {
	acc, ok := s.records[id]
	if !ok {
		return 0, accomplishments.ErrNotFound
	}
	acc.CongratulationsCount++
	return acc.CongratulationsCount, nil
}

func (s *fakeStore) IncrementVotes(ctx context.Context, id string) (int, error) {
	acc, ok := s.records[id]
	if !ok {
		return 0, accomplishments.ErrNotFound
	}
	acc.VotesCount++
	return acc.VotesCount, nil
}

func (s *fakeStore) SetSharedPost(ctx context.Context, id, post string) error {
	acc, ok := s.records[id]
	if !ok {
		return accomplishments.ErrNotFound
	}
	acc.SharedPost = post
	return nil
}

type fakeQueue struct {
	queued []string
}

func (q *fakeQueue) QueueSharePostJob(ctx context.Context, id string) error {
	q.queued = append(q.queued, id)
	return nil
}

func signToken(t *testing.T, userID, name string) string {
	t.Helper()
	claims := &auth.JWTClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestServer(gen *fakeGenerator, store *fakeStore, queue SharePoster) *Server {
	manager := submission.NewManager(gen, store)
	return NewServer(0, testSecret, manager, store, queue, gen)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(&fakeGenerator{}, newFakeStore(), nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/flows", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/flows", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(&fakeGenerator{}, newFakeStore(), nil)
	rec := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFlowLifecycleOverHTTP(t *testing.T) {
	gen := &fakeGenerator{
		questions: []string{"q1?", "q2?", "q3?"},
		statement: "Priya resolved a production login outage for a customer.",
	}
	store := newFakeStore()
	s := newTestServer(gen, store, nil)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/flows", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var flow flowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
	require.NotEmpty(t, flow.FlowID)
	assert.Equal(t, "basic", flow.State)

	base := "/api/v1/flows/" + flow.FlowID
	rec = doJSON(t, s, http.MethodPost, base+"/questions", token, basicFieldsRequest{
		OriginalStatement: "Today I helped my customer by fixing a login bug",
		ImpactType:        "customer",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
	assert.Equal(t, "dynamic", flow.State)
	assert.Len(t, flow.Questions, 3)

	rec = doJSON(t, s, http.MethodPost, base+"/answers", token, answersRequest{
		Answers: []string{"a1", "a2", "a3"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, base+"/statement", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
	assert.Equal(t, "preview", flow.State)
	assert.Equal(t, gen.statement, flow.Preview)

	rec = doJSON(t, s, http.MethodPost, base+"/submit", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var acc models.Accomplishment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	assert.Equal(t, "u-1", acc.UserID)
	assert.Equal(t, gen.statement, acc.AIGeneratedStatement)
	assert.Len(t, store.records, 1)
}

func TestValidationFailureReturns422(t *testing.T) {
	s := newTestServer(&fakeGenerator{questions: []string{"q?"}}, newFakeStore(), nil)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/flows", token, nil)
	var flow flowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))

	rec = doJSON(t, s, http.MethodPost, "/api/v1/flows/"+flow.FlowID+"/questions", token, basicFieldsRequest{
		OriginalStatement: "",
		ImpactType:        "customer",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "original statement")
}

func TestWrongStateReturns409(t *testing.T) {
	s := newTestServer(&fakeGenerator{}, newFakeStore(), nil)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/flows", token, nil)
	var flow flowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))

	rec = doJSON(t, s, http.MethodPost, "/api/v1/flows/"+flow.FlowID+"/submit", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUnknownFlowReturns404(t *testing.T) {
	s := newTestServer(&fakeGenerator{}, newFakeStore(), nil)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/flows/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func seedAccomplishment(store *fakeStore, id string, impact models.ImpactType) {
	store.records[id] = &models.Accomplishment{
		ID:                   id,
		UserID:               "u-1",
		UserName:             "Priya",
		OriginalStatement:    "fixed a bug",
		ImpactType:           impact,
		AIGeneratedStatement: "Priya fixed a bug.",
		CreatedAt:            time.Now().UTC(),
	}
}

func TestFeedListAndFilter(t *testing.T) {
	store := newFakeStore()
	seedAccomplishment(store, "a-1", models.ImpactCustomer)
	seedAccomplishment(store, "a-2", models.ImpactTeam)
	s := newTestServer(&fakeGenerator{}, store, nil)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/accomplishments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Accomplishment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/accomplishments?impactType=team", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "a-2", list[0].ID)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/accomplishments?impactType=galaxy", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCounters(t *testing.T) {
	store := newFakeStore()
	seedAccomplishment(store, "a-1", models.ImpactTeam)
	s := newTestServer(&fakeGenerator{}, store, nil)
	token := signToken(t, "u-1", "Priya")

	for i := 1; i <= 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/accomplishments/a-1/congratulate", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp counterResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, i, resp.Count)
	}

	rec := doJSON(t, s, http.MethodPost, "/api/v1/accomplishments/a-1/vote", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.records["a-1"].VotesCount)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/accomplishments/missing/vote", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShareInlineWithoutQueue(t *testing.T) {
	gen := &fakeGenerator{post: "Celebrating Priya! #TeamWins"}
	store := newFakeStore()
	seedAccomplishment(store, "a-1", models.ImpactTeam)
	s := newTestServer(gen, store, nil)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/accomplishments/a-1/share", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Celebrating Priya!")
	assert.Equal(t, gen.post, store.records["a-1"].SharedPost)
}

func TestShareQueued(t *testing.T) {
	store := newFakeStore()
	seedAccomplishment(store, "a-1", models.ImpactTeam)
	queue := &fakeQueue{}
	s := newTestServer(&fakeGenerator{}, store, queue)
	token := signToken(t, "u-1", "Priya")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/accomplishments/a-1/share", token, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"a-1"}, queue.queued)
	// The record is untouched until the worker runs.
	assert.Empty(t, store.records["a-1"].SharedPost)
}

func TestReactionRateLimit(t *testing.T) {
	store := newFakeStore()
	seedAccomplishment(store, "a-1", models.ImpactTeam)
	s := newTestServer(&fakeGenerator{}, store, nil)
	token := signToken(t, "u-1", "Priya")

	limited := false
	for i := 0; i < 20; i++ {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/accomplishments/a-1/congratulate", token, nil)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusOK, rec.Code, fmt.Sprintf("request %d", i))
	}
	assert.True(t, limited, "burst should eventually hit the rate limit")
}
