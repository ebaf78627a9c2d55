package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/atlasjose/Bases-de-datos2/internal/config"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/report"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/stats"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/survey"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/user"
	"github.com/atlasjose/Bases-de-datos2/internal/domain/vote"
	jwtpkg "github.com/atlasjose/Bases-de-datos2/internal/platform/jwt"
	"github.com/atlasjose/Bases-de-datos2/internal/worker"
)

// testStore backs all repository fakes so reports see the same data the
// write path produced.
type testStore struct {
	mu             sync.Mutex
	users          map[int64]*user.User
	byMail         map[string]int64
	surveys        map[int64]*survey.Survey
	questions      map[int64][]survey.Question
	optionSurvey   map[int64]int64
	votes          []vote.Vote
	stats          map[int64]*stats.SurveyStats
	nextUserID     int64
	nextSurveyID   int64
	nextQuestionID int64
	nextOptionID   int64
	nextVoteID     int64
}

func newTestStore() *testStore {
	return &testStore{
		users:          make(map[int64]*user.User),
		byMail:         make(map[string]int64),
		surveys:        make(map[int64]*survey.Survey),
		questions:      make(map[int64][]survey.Question),
		optionSurvey:   make(map[int64]int64),
		stats:          make(map[int64]*stats.SurveyStats),
		nextUserID:     1,
		nextSurveyID:   1,
		nextQuestionID: 1,
		nextOptionID:   1,
		nextVoteID:     1,
	}
}

type testUserRepo struct{ s *testStore }

func (r *testUserRepo) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.nextUserID
	r.s.nextUserID++
	copyUser := *u
	r.s.users[u.ID] = &copyUser
	r.s.byMail[u.Email] = u.ID
	return nil
}

func (r *testUserRepo) Update(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok {
		return sql.ErrNoRows
	}
	delete(r.s.byMail, old.Email)
	copyUser := *u
	r.s.users[u.ID] = &copyUser
	r.s.byMail[u.Email] = u.ID
	return nil
}

func (r *testUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byMail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyUser := *r.s.users[id]
	return &copyUser, nil
}

func (r *testUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copyUser := *u
	return &copyUser, nil
}

func (r *testUserRepo) List(ctx context.Context) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		res = append(res, *u)
	}
	return res, nil
}

func (r *testUserRepo) Deactivate(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.IsActive = false
	return nil
}

type testSurveyRepo struct{ s *testStore }

func (r *testSurveyRepo) Create(ctx context.Context, sv *survey.Survey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sv.ID = r.s.nextSurveyID
	r.s.nextSurveyID++
	copySv := *sv
	r.s.surveys[sv.ID] = &copySv
	return nil
}

func (r *testSurveyRepo) GetByID(ctx context.Context, id int64) (*survey.Survey, []survey.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sv, ok := r.s.surveys[id]
	if !ok {
		return nil, nil, sql.ErrNoRows
	}
	copySv := *sv
	qs := make([]survey.Question, len(r.s.questions[id]))
	copy(qs, r.s.questions[id])
	return &copySv, qs, nil
}

func (r *testSurveyRepo) List(ctx context.Context, active *bool) ([]survey.Survey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := []survey.Survey{}
	for _, sv := range r.s.surveys {
		if active != nil && sv.IsActive != *active {
			continue
		}
		res = append(res, *sv)
	}
	return res, nil
}

func (r *testSurveyRepo) UpdateInfo(ctx context.Context, id int64, title string, description *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sv, ok := r.s.surveys[id]
	if !ok {
		return sql.ErrNoRows
	}
	sv.Title = title
	sv.Description = description
	return nil
}

func (r *testSurveyRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sv, ok := r.s.surveys[id]
	if !ok {
		return sql.ErrNoRows
	}
	sv.IsActive = active
	return nil
}

func (r *testSurveyRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.surveys[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.surveys, id)
	delete(r.s.questions, id)
	delete(r.s.stats, id)
	return nil
}

func (r *testSurveyRepo) AddQuestion(ctx context.Context, q *survey.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q.ID = r.s.nextQuestionID
	r.s.nextQuestionID++
	for i := range q.Options {
		q.Options[i].ID = r.s.nextOptionID
		r.s.nextOptionID++
		q.Options[i].QuestionID = q.ID
		r.s.optionSurvey[q.Options[i].ID] = q.SurveyID
	}
	r.s.questions[q.SurveyID] = append(r.s.questions[q.SurveyID], *q)
	return nil
}

type testVoteRepo struct{ s *testStore }

func (r *testVoteRepo) HasVoted(ctx context.Context, userID, surveyID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.UserID == userID && r.s.optionSurvey[v.OptionID] == surveyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *testVoteRepo) SurveyForOption(ctx context.Context, optionID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	surveyID, ok := r.s.optionSurvey[optionID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return surveyID, nil
}

type testStatsRepo struct{ s *testStore }

func (r *testStatsRepo) Seed(ctx context.Context, surveyID int64, asOf time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.stats[surveyID]; ok {
		st.LastUpdate = asOf
		return nil
	}
	r.s.stats[surveyID] = &stats.SurveyStats{SurveyID: surveyID, LastUpdate: asOf}
	return nil
}

func (r *testStatsRepo) RecordVote(ctx context.Context, v *vote.Vote) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	surveyID, ok := r.s.optionSurvey[v.OptionID]
	if !ok {
		return 0, stats.ErrDanglingReference
	}
	v.ID = r.s.nextVoteID
	r.s.nextVoteID++
	r.s.votes = append(r.s.votes, *v)
	st, ok := r.s.stats[surveyID]
	if !ok {
		st = &stats.SurveyStats{SurveyID: surveyID}
		r.s.stats[surveyID] = st
	}
	st.TotalVotes++
	st.LastUpdate = v.CastAt
	return surveyID, nil
}

func (r *testStatsRepo) Get(ctx context.Context, surveyID int64) (*stats.SurveyStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stats[surveyID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copySt := *st
	return &copySt, nil
}

func (r *testStatsRepo) Recount(ctx context.Context, surveyID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int64
	for _, v := range r.s.votes {
		if r.s.optionSurvey[v.OptionID] == surveyID {
			total++
		}
	}
	st, ok := r.s.stats[surveyID]
	if !ok {
		st = &stats.SurveyStats{SurveyID: surveyID}
		r.s.stats[surveyID] = st
	}
	st.TotalVotes = total
	st.LastUpdate = time.Now()
	return total, nil
}

type testReportRepo struct{ s *testStore }

func (r *testReportRepo) Summary(ctx context.Context, surveyID int64) (*report.SurveySummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sv, ok := r.s.surveys[surveyID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	sum := &report.SurveySummary{
		SurveyID:    sv.ID,
		Title:       sv.Title,
		Description: sv.Description,
		CreatedAt:   sv.CreatedAt,
		IsActive:    sv.IsActive,
	}
	if owner, ok := r.s.users[sv.OwnerID]; ok {
		sum.OwnerName = owner.Name
	}
	if st, ok := r.s.stats[surveyID]; ok {
		sum.TotalVotes = st.TotalVotes
		sum.LastUpdate = st.LastUpdate
	}
	return sum, nil
}

func (r *testReportRepo) BreakdownRows(ctx context.Context, surveyID int64) ([]report.BreakdownRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[int64]int64)
	for _, v := range r.s.votes {
		counts[v.OptionID]++
	}
	var rows []report.BreakdownRow
	for _, q := range r.s.questions[surveyID] {
		for _, o := range q.Options {
			rows = append(rows, report.BreakdownRow{
				QuestionID:   q.ID,
				QuestionText: q.Text,
				OptionID:     o.ID,
				OptionText:   o.Text,
				Votes:        counts[o.ID],
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].QuestionText != rows[j].QuestionText {
			return rows[i].QuestionText < rows[j].QuestionText
		}
		if rows[i].QuestionID != rows[j].QuestionID {
			return rows[i].QuestionID < rows[j].QuestionID
		}
		return rows[i].OptionID < rows[j].OptionID
	})
	return rows, nil
}

func (r *testReportRepo) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := &report.Dashboard{}
	d.TotalSurveys = int64(len(r.s.surveys))
	for _, sv := range r.s.surveys {
		if sv.IsActive {
			d.ActiveSurveys++
		}
	}
	voters := make(map[int64]struct{})
	for _, v := range r.s.votes {
		voters[v.UserID] = struct{}{}
	}
	d.VotingUsers = int64(len(voters))
	d.TotalVotes = int64(len(r.s.votes))

	ids := make([]int64, 0, len(r.s.surveys))
	for id := range r.s.surveys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		var total int64
		if st, ok := r.s.stats[id]; ok {
			total = st.TotalVotes
		}
		if d.TopSurveyID == 0 || total > d.TopSurveyVotes {
			d.TopSurveyID = id
			d.TopSurveyTitle = r.s.surveys[id].Title
			d.TopSurveyVotes = total
		}
	}
	return d, nil
}

func setupServer(t *testing.T) (*httptest.Server, *testStore, func()) {
	t.Helper()
	store := newTestStore()

	statsRepo := &testStatsRepo{s: store}
	aggregator := stats.NewAggregator(statsRepo, nil)

	userSvc := user.NewService(&testUserRepo{s: store})
	surveySvc := survey.NewService(&testSurveyRepo{s: store}, aggregator)
	voteSvc := vote.NewService(&testVoteRepo{s: store}, aggregator, config.PolicySingleVote)
	reportSvc := report.NewService(&testReportRepo{s: store})

	jwtMgr := jwtpkg.NewManager("secret", "test-issuer")
	voteCh := make(chan worker.VoteEvent, 100)

	server := httptest.NewServer(NewRouter(userSvc, surveySvc, voteSvc, reportSvc, jwtMgr, voteCh, nil))
	cleanup := func() {
		server.Close()
		close(voteCh)
	}
	return server, store, cleanup
}

func registerAndToken(t *testing.T, serverURL, email, name, password string) string {
	t.Helper()
	body, _ := json.Marshal(registerRequest{Email: email, Name: name, Password: password})
	resp, err := http.Post(serverURL+"/api/v1/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("token missing")
	}
	return token
}

func createSurveyViaAPI(t *testing.T, serverURL, token string, req createSurveyRequest) int64 {
	t.Helper()
	data, _ := json.Marshal(req)
	httpReq, _ := http.NewRequest(http.MethodPost, serverURL+"/api/v1/surveys", bytes.NewReader(data))
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("create survey request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var payload map[string]int64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode create survey: %v", err)
	}
	return payload["id"]
}

func castVote(t *testing.T, serverURL, token, fromIP string, optionID int64) *http.Response {
	t.Helper()
	body, _ := json.Marshal(castVoteRequest{OptionID: optionID})
	req, _ := http.NewRequest(http.MethodPost, serverURL+"/api/v1/votes", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", fromIP)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("vote request: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, serverURL, path, token string, out any) int {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, serverURL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestRegisterValidationOverHTTP(t *testing.T) {
	server, _, cleanup := setupServer(t)
	defer cleanup()

	cases := []struct {
		name string
		req  registerRequest
		code string
	}{
		{"invalid email", registerRequest{Email: "not-an-email", Name: "Ana", Password: "supersecret"}, "invalid_email"},
		{"weak password", registerRequest{Email: "ana@example.com", Name: "Ana", Password: "short"}, "weak_credential"},
		{"empty username", registerRequest{Email: "ana@example.com", Name: "   ", Password: "supersecret"}, "empty_username"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			resp, err := http.Post(server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var payload map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload["error"] != tc.code {
				t.Fatalf("expected error %q, got %q", tc.code, payload["error"])
			}
		})
	}
}

func TestEndToEndSurveyVoting(t *testing.T) {
	server, store, cleanup := setupServer(t)
	defer cleanup()

	anaToken := registerAndToken(t, server.URL, "ana@example.com", "Ana", "supersecret")

	surveyID := createSurveyViaAPI(t, server.URL, anaToken, createSurveyRequest{
		Title:    "Customer Satisfaction",
		IsActive: true,
		Questions: []questionRequest{
			{Text: "How satisfied are you?", Type: "scale", Options: []string{"1", "2", "3", "4"}},
		},
	})

	store.mu.Lock()
	st := store.stats[surveyID]
	store.mu.Unlock()
	if st == nil || st.TotalVotes != 0 {
		t.Fatalf("expected zero-count stats row after creation, got %+v", st)
	}

	store.mu.Lock()
	options := store.questions[surveyID][0].Options
	store.mu.Unlock()
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}

	resp := castVote(t, server.URL, anaToken, "10.0.0.1", options[0].ID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 first vote, got %d", resp.StatusCode)
	}

	store.mu.Lock()
	total := store.stats[surveyID].TotalVotes
	store.mu.Unlock()
	if total != 1 {
		t.Fatalf("expected counter 1 after vote, got %d", total)
	}

	var tallies []report.OptionTally
	if code := getJSON(t, server.URL, "/api/v1/surveys/"+itoa(surveyID)+"/breakdown", anaToken, &tallies); code != http.StatusOK {
		t.Fatalf("breakdown status %d", code)
	}
	if len(tallies) != 4 {
		t.Fatalf("expected 4 tallies, got %d", len(tallies))
	}
	if tallies[0].OptionID != options[0].ID || tallies[0].Percentage != 100.0 || tallies[0].Rank != 1 {
		t.Fatalf("voted option must lead at 100%%: %+v", tallies[0])
	}
	for _, tally := range tallies[1:] {
		if tally.Percentage != 0.0 {
			t.Fatalf("unvoted options must report 0.00: %+v", tally)
		}
	}

	var voted map[string]bool
	if code := getJSON(t, server.URL, "/api/v1/surveys/"+itoa(surveyID)+"/voted", anaToken, &voted); code != http.StatusOK {
		t.Fatalf("voted status %d", code)
	}
	if !voted["has_voted"] {
		t.Fatalf("expected has_voted true")
	}

	dup := castVote(t, server.URL, anaToken, "10.0.0.1", options[1].ID)
	defer dup.Body.Close()
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate vote, got %d", dup.StatusCode)
	}

	var sum report.SurveySummary
	if code := getJSON(t, server.URL, "/api/v1/surveys/"+itoa(surveyID)+"/summary", anaToken, &sum); code != http.StatusOK {
		t.Fatalf("summary status %d", code)
	}
	if sum.TotalVotes != 1 || sum.OwnerName != "Ana" || !sum.IsActive {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestDeleteSurveyRestrictedAfterVotes(t *testing.T) {
	server, store, cleanup := setupServer(t)
	defer cleanup()

	token := registerAndToken(t, server.URL, "owner@example.com", "Owner", "supersecret")
	surveyID := createSurveyViaAPI(t, server.URL, token, createSurveyRequest{
		Title:    "Short lived",
		IsActive: true,
		Questions: []questionRequest{
			{Text: "Keep?", Type: "yes_no", Options: []string{"yes", "no"}},
		},
	})

	store.mu.Lock()
	optionID := store.questions[surveyID][0].Options[0].ID
	store.mu.Unlock()

	resp := castVote(t, server.URL, token, "10.0.1.1", optionID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("vote status %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/surveys/"+itoa(surveyID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 deleting voted survey, got %d", delResp.StatusCode)
	}
}

func TestFutureDateRejectedOverHTTP(t *testing.T) {
	server, _, cleanup := setupServer(t)
	defer cleanup()

	token := registerAndToken(t, server.URL, "owner@example.com", "Owner", "supersecret")

	future := time.Now().AddDate(0, 0, 1).Format(time.RFC3339)
	body, _ := json.Marshal(createSurveyRequest{Title: "Tomorrow", CreatedAt: &future})
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/v1/surveys", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for future date, got %d", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload["error"] != "future_date" {
		t.Fatalf("expected future_date, got %q", payload["error"])
	}
}

func TestDashboardScenario(t *testing.T) {
	server, store, cleanup := setupServer(t)
	defer cleanup()

	owner := registerAndToken(t, server.URL, "owner@example.com", "Owner", "supersecret")

	surveyIDs := make([]int64, 0, 3)
	for i := 1; i <= 3; i++ {
		id := createSurveyViaAPI(t, server.URL, owner, createSurveyRequest{
			Title:    fmt.Sprintf("Survey %d", i),
			IsActive: i != 3,
			Questions: []questionRequest{
				{Text: "Pick one", Options: []string{"a", "b"}},
			},
		})
		surveyIDs = append(surveyIDs, id)
	}

	voters := make([]string, 5)
	for i := range voters {
		voters[i] = registerAndToken(t, server.URL,
			fmt.Sprintf("voter%d@example.com", i), fmt.Sprintf("Voter %d", i), "supersecret")
	}

	vote := func(voterIdx, surveyIdx int) {
		t.Helper()
		store.mu.Lock()
		opts := store.questions[surveyIDs[surveyIdx]][0].Options
		store.mu.Unlock()
		resp := castVote(t, server.URL, voters[voterIdx], fmt.Sprintf("10.1.0.%d", voterIdx), opts[voterIdx%2].ID)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("vote voter=%d survey=%d status=%d", voterIdx, surveyIdx, resp.StatusCode)
		}
	}

	// 8 votes: all five voters in survey 1, two in survey 2, one in survey 3
	for i := 0; i < 5; i++ {
		vote(i, 0)
	}
	vote(0, 1)
	vote(1, 1)
	vote(2, 2)

	var dash report.Dashboard
	if code := getJSON(t, server.URL, "/api/v1/dashboard", owner, &dash); code != http.StatusOK {
		t.Fatalf("dashboard status %d", code)
	}
	if dash.TotalSurveys != 3 {
		t.Fatalf("expected 3 surveys, got %d", dash.TotalSurveys)
	}
	if dash.ActiveSurveys != 2 {
		t.Fatalf("expected 2 active surveys, got %d", dash.ActiveSurveys)
	}
	if dash.VotingUsers != 5 {
		t.Fatalf("expected 5 voting users, got %d", dash.VotingUsers)
	}
	if dash.TotalVotes != 8 {
		t.Fatalf("expected 8 votes, got %d", dash.TotalVotes)
	}
	if dash.TopSurveyID != surveyIDs[0] || dash.TopSurveyVotes != 5 {
		t.Fatalf("expected survey %d with 5 votes on top, got %d with %d",
			surveyIDs[0], dash.TopSurveyID, dash.TopSurveyVotes)
	}
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	server, store, cleanup := setupServer(t)
	defer cleanup()

	token := registerAndToken(t, server.URL, "plain@example.com", "Plain", "supersecret")

	if code := getJSON(t, server.URL, "/api/v1/users", token, nil); code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", code)
	}

	store.mu.Lock()
	for _, u := range store.users {
		u.Role = "admin"
	}
	store.mu.Unlock()

	// role is baked into the token, so a fresh login is needed
	body, _ := json.Marshal(loginRequest{Email: "plain@example.com", Password: "supersecret"})
	resp, err := http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	adminToken, _ := payload["token"].(string)

	if code := getJSON(t, server.URL, "/api/v1/users", adminToken, nil); code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", code)
	}
}
