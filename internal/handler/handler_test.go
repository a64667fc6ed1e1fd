package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/money-marathon/internal/auth"
	"github.com/Dan9191/money-marathon/internal/config"
	"github.com/Dan9191/money-marathon/internal/middleware"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/Dan9191/money-marathon/internal/repository"
	"github.com/Dan9191/money-marathon/internal/service"
	"github.com/Dan9191/money-marathon/internal/tokenstore"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "jwt", HMACSecret: "hmac", TokenTTL: time.Hour}
	tokens := tokenstore.NewMemoryStore()
	svc := service.NewService(repository.NewMemoryStore(), log, cfg, tokens, nil)
	jwt := auth.JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}
	r := NewRouter(NewHandler(svc, log), middleware.AuthMiddleware(jwt, tokens, log))
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, dst any) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("status=%d want %d body=%s", rec.Code, status, rec.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
			s.t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
}

func (s *testServer) signUp(email string) string {
	s.t.Helper()
	var sess service.Session
	s.expect(s.do(http.MethodPost, "/api/auth/register", "", `{"name":"Ann","email":"`+email+`","password":"secret1"}`), http.StatusCreated, &sess)
	return sess.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	var body map[string]string
	s.expect(s.do(http.MethodGet, "/health", "", ""), http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Fatalf("body=%v", body)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.signUp("ann@example.com")

	s.expect(s.do(http.MethodPost, "/api/auth/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret1"}`), http.StatusConflict, nil)
	s.expect(s.do(http.MethodPost, "/api/auth/login", "", `{"email":"ann@example.com","password":"wrong1"}`), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/api/auth/register", "", `{"name":"Bob","email":"bob@example.com","password":"`+strings.Repeat("p", 80)+`"}`), http.StatusBadRequest, nil)
	s.expect(s.do(http.MethodPost, "/api/auth/login", "", `{"email":"ann@example.com"`), http.StatusBadRequest, nil)

	var sess service.Session
	s.expect(s.do(http.MethodPost, "/api/auth/login", "", `{"email":"ann@example.com","password":"secret1"}`), http.StatusOK, &sess)

	var me models.Principal
	s.expect(s.do(http.MethodGet, "/api/auth/user", sess.Token, ""), http.StatusOK, &me)
	if me.Email != "ann@example.com" || me.ID != sess.User.ID {
		t.Fatalf("me=%+v", me)
	}

	s.expect(s.do(http.MethodPost, "/api/auth/logout", sess.Token, ""), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/api/auth/user", sess.Token, ""), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodGet, "/api/plans", "", ""), http.StatusUnauthorized, nil)
}

func TestPlanLifecycle(t *testing.T) {
	s := newTestServer(t)
	tok := s.signUp("ann@example.com")

	var created models.PlanDetails
	s.expect(s.do(http.MethodPost, "/api/plans", tok, `{"name":"Tennis","start_wager":"100","odds":1.5,"days":3}`), http.StatusCreated, &created)
	if len(created.DayEntries) != 3 || created.DayEntries[2].Winnings.String() != "337.5" {
		t.Fatalf("created=%+v", created)
	}
	id := created.Plan.ID

	var list []models.Plan
	s.expect(s.do(http.MethodGet, "/api/plans", tok, ""), http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != id {
		t.Fatalf("list=%+v", list)
	}

	var d models.PlanDetails
	s.expect(s.do(http.MethodPatch, "/api/plans/"+id+"/days/1", tok, `{"result":"win"}`), http.StatusOK, &d)
	s.expect(s.do(http.MethodPatch, "/api/plans/"+id+"/days/2", tok, `{"result":"loss"}`), http.StatusOK, &d)
	if d.Plan.Status != models.PlanStopped || d.Stats.CurrentDay != 3 {
		t.Fatalf("after loss plan=%s stats=%+v", d.Plan.Status, d.Stats)
	}
	s.expect(s.do(http.MethodPatch, "/api/plans/"+id+"/days/2", tok, `{"result":"win"}`), http.StatusBadRequest, nil)

	s.expect(s.do(http.MethodPost, "/api/plans/"+id+"/restart", tok, `{"day":2}`), http.StatusOK, &d)
	if d.Plan.Status != models.PlanActive || d.DayEntries[1].Result != models.ResultPending || d.DayEntries[1].Wager.String() != "150" {
		t.Fatalf("after restart=%+v", d)
	}

	var sum models.DashboardSummary
	s.expect(s.do(http.MethodGet, "/api/dashboard", tok, ""), http.StatusOK, &sum)
	if sum.TotalPlans != 1 || sum.ActivePlans != 1 || sum.PotentialWinnings.String() != "337.5" {
		t.Fatalf("summary=%+v", sum)
	}

	rec := s.do(http.MethodGet, "/api/plans/"+id+"/export.xml", tok, "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml") {
		t.Fatalf("export status=%d headers=%v", rec.Code, rec.Header())
	}
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if n := len(doc.FindElements("//dayEntries/day")); n != 3 {
		t.Fatalf("exported days=%d want 3", n)
	}

	s.expect(s.do(http.MethodDelete, "/api/plans/"+id, tok, ""), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/api/plans/"+id, tok, ""), http.StatusNotFound, nil)
}

func TestPlanErrors(t *testing.T) {
	s := newTestServer(t)
	owner := s.signUp("ann@example.com")
	other := s.signUp("bob@example.com")

	var created models.PlanDetails
	s.expect(s.do(http.MethodPost, "/api/plans", owner, `{"name":"Tennis","start_wager":"100","odds":"1.5","days":3}`), http.StatusCreated, &created)
	id := created.Plan.ID

	var errResp struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	s.expect(s.do(http.MethodPost, "/api/plans", owner, `{"name":"x","start_wager":"100","odds":"1","days":3}`), http.StatusBadRequest, &errResp)
	if errResp.Field != "odds" {
		t.Fatalf("error=%+v want odds field", errResp)
	}

	tests := []struct {
		name, method, path, token, body string
		want                            int
	}{
		{"unknown field", http.MethodPost, "/api/plans", owner, `{"name":"x","stake":1}`, http.StatusBadRequest},
		{"days out of range", http.MethodPost, "/api/plans", owner, `{"name":"x","start_wager":"100","odds":"1.5","days":366}`, http.StatusBadRequest},
		{"other user reads", http.MethodGet, "/api/plans/" + id, other, "", http.StatusForbidden},
		{"other user records", http.MethodPatch, "/api/plans/" + id + "/days/1", other, `{"result":"win"}`, http.StatusForbidden},
		{"unknown plan", http.MethodGet, "/api/plans/nope", owner, "", http.StatusNotFound},
		{"non numeric day", http.MethodPatch, "/api/plans/" + id + "/days/x", owner, `{"result":"win"}`, http.StatusBadRequest},
		{"day past end", http.MethodPatch, "/api/plans/" + id + "/days/4", owner, `{"result":"win"}`, http.StatusBadRequest},
		{"bad result", http.MethodPatch, "/api/plans/" + id + "/days/1", owner, `{"result":"pending"}`, http.StatusBadRequest},
		{"restart day zero", http.MethodPost, "/api/plans/" + id + "/restart", owner, `{"day":0}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.t = t
			s.expect(s.do(tt.method, tt.path, tt.token, tt.body), tt.want, nil)
		})
	}
}

func TestCreatePlan_ExtremeDecimalsRejectedQuickly(t *testing.T) {
	s := newTestServer(t)
	tok := s.signUp("ann@example.com")

	bodies := map[string]string{
		"start_wager": `{"name":"x","start_wager":"1e-2000000000","odds":"1.5","days":3}`,
		"odds":        `{"name":"x","start_wager":"100","odds":"1e2000000000","days":3}`,
	}
	for field, body := range bodies {
		var errResp struct {
			Field string `json:"field"`
		}
		start := time.Now()
		s.expect(s.do(http.MethodPost, "/api/plans", tok, body), http.StatusBadRequest, &errResp)
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Fatalf("%s rejection took %s", field, elapsed)
		}
		if errResp.Field != field {
			t.Fatalf("field=%q want %q", errResp.Field, field)
		}
	}

	var list []models.Plan
	s.expect(s.do(http.MethodGet, "/api/plans", tok, ""), http.StatusOK, &list)
	if len(list) != 0 {
		t.Fatalf("plans=%d want 0", len(list))
	}
}
