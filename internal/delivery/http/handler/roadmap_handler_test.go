package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learning-buddy/internal/delivery/http/middleware"
	"learning-buddy/internal/domain/nextskill"
	"learning-buddy/internal/domain/roadmap"
	"learning-buddy/internal/pkg/jwt"
	"learning-buddy/internal/usecase"

	gojson "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

type fakeNextSkills struct {
	got    usecase.NextSkillParams
	result nextskill.Result
	err    error
}

func (f *fakeNextSkills) PredictNextSkills(_ context.Context, p usecase.NextSkillParams) (nextskill.Result, error) {
	f.got = p
	if f.err != nil {
		return nextskill.Result{}, f.err
	}
	r := f.result
	r.Query = p.Query
	return r, nil
}

type fakeRoadmaps struct {
	views map[string]roadmap.View
	err   error
}

func (f *fakeRoadmaps) RoadmapByEmail(_ context.Context, email string) (roadmap.View, error) {
	if f.err != nil {
		return roadmap.View{}, f.err
	}
	v, ok := f.views[strings.ToLower(email)]
	if !ok {
		return roadmap.View{}, usecase.ErrRoadmapUserNotFound
	}
	return v, nil
}

func (f *fakeRoadmaps) RoadmapByUserID(_ context.Context, userID string) (roadmap.View, error) {
	for _, v := range f.views {
		if v.UserID == userID {
			return v, nil
		}
	}
	return roadmap.View{}, usecase.ErrRoadmapUserNotFound
}

func (f *fakeRoadmaps) AllRoadmaps(context.Context) ([]roadmap.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]roadmap.View, 0, len(f.views))
	for _, v := range f.views {
		out = append(out, v)
	}
	return out, nil
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    gojson.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, ns usecase.NextSkillUsecase, rm usecase.RoadmapUsecase) (*fiber.App, *jwt.HMACService) {
	t.Helper()
	svc := jwt.NewHMACService("test-secret", time.Minute)

	app := fiber.New(fiber.Config{JSONEncoder: gojson.Marshal, JSONDecoder: gojson.Unmarshal})
	app.Use(middleware.NewErrorMiddleware(zerolog.Nop()).Middleware())
	NewRoadmapHandler(ns, rm, middleware.NewAuthMiddleware(svc).Middleware()).RegisterRoutes(app.Group("/api/v1"))
	return app, svc
}

func do(t *testing.T, app *fiber.App, method, path, body string, header map[string]string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := gojson.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: decode %s: %v", method, path, raw, err)
	}
	return resp.StatusCode, env
}

func TestNextSkills(t *testing.T) {
	ns := &fakeNextSkills{result: nextskill.Result{
		Outcome:        nextskill.OutcomeRanked,
		LearningPath:   "Front-End Web Developer",
		DetectedSkills: []string{"HTML"},
		Recommendations: []nextskill.Recommendation{
			{Skill: "JavaScript", SkillLevel: "Intermediate", Prerequisite: "HTML, CSS", Probability: 0.72},
		},
	}}
	app, _ := newTestApp(t, ns, &fakeRoadmaps{})

	status, env := do(t, app, "POST", "/api/v1/roadmap/next-skills", `{"query":"saya bisa html","top_n":3}`, nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d %+v", status, env)
	}
	if ns.got.Query != "saya bisa html" || ns.got.TopN != 3 {
		t.Fatalf("usecase got %+v", ns.got)
	}

	var data struct {
		Query           string   `json:"query"`
		LearningPath    string   `json:"learning_path"`
		DetectedSkills  []string `json:"detected_skills"`
		Fallback        bool     `json:"fallback"`
		Recommendations []struct {
			Skill       string  `json:"skill"`
			Probability float64 `json:"probability"`
		} `json:"recommendations"`
	}
	if err := gojson.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Fallback || data.LearningPath != "Front-End Web Developer" || len(data.Recommendations) != 1 || data.Recommendations[0].Skill != "JavaScript" {
		t.Fatalf("unexpected data %+v", data)
	}
}

func TestNextSkills_Validation(t *testing.T) {
	app, _ := newTestApp(t, &fakeNextSkills{}, &fakeRoadmaps{})

	for _, body := range []string{`{}`, `{"query":"html","top_n":11}`, `{"query":"html","top_n":-1}`, `not json`} {
		status, _ := do(t, app, "POST", "/api/v1/roadmap/next-skills", body, nil)
		if status != 400 {
			t.Errorf("body %s: expected 400, got %d", body, status)
		}
	}
}

func TestNextSkills_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{usecase.ErrInvalidInput, 400},
		{usecase.ErrUnavailable, 503},
		{usecase.ErrInternal, 500},
	}
	for _, tc := range cases {
		app, _ := newTestApp(t, &fakeNextSkills{err: tc.err}, &fakeRoadmaps{})
		status, _ := do(t, app, "POST", "/api/v1/roadmap/next-skills", `{"query":"html"}`, nil)
		if status != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, status)
		}
	}
}

func TestRoadmapByEmail(t *testing.T) {
	rm := &fakeRoadmaps{views: map[string]roadmap.View{
		"hana@example.com": {UserID: "u1", UserName: "Hana", Email: "hana@example.com", Roadmap: []roadmap.Item{}},
	}}
	app, _ := newTestApp(t, &fakeNextSkills{}, rm)

	status, env := do(t, app, "POST", "/api/v1/roadmap/by-email", `{"email":"hana@example.com"}`, nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d %+v", status, env)
	}
	var view roadmap.View
	if err := gojson.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.UserName != "Hana" {
		t.Fatalf("unexpected view %+v", view)
	}

	status, env = do(t, app, "POST", "/api/v1/roadmap/by-email", `{"email":"ghost@example.com"}`, nil)
	if status != 404 || !strings.Contains(env.Message, "ghost@example.com") {
		t.Fatalf("expected 404 naming the email, got %d %+v", status, env)
	}

	status, _ = do(t, app, "POST", "/api/v1/roadmap/by-email", `{"email":"not-an-email"}`, nil)
	if status != 400 {
		t.Fatalf("expected 400 for invalid email, got %d", status)
	}
}

func TestRoadmapMe(t *testing.T) {
	rm := &fakeRoadmaps{views: map[string]roadmap.View{
		"hana@example.com": {UserID: "u1", UserName: "Hana", Email: "hana@example.com"},
	}}
	app, svc := newTestApp(t, &fakeNextSkills{}, rm)

	token, err := svc.GenerateAccessToken("u1", "hana@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	status, _ := do(t, app, "GET", "/api/v1/roadmap/me", "", map[string]string{"Authorization": "Bearer " + token})
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	status, _ = do(t, app, "GET", "/api/v1/roadmap/me", "", nil)
	if status != 401 {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestRoadmapAll(t *testing.T) {
	rm := &fakeRoadmaps{views: map[string]roadmap.View{
		"a@example.com": {Email: "a@example.com"},
		"b@example.com": {Email: "b@example.com"},
	}}
	app, _ := newTestApp(t, &fakeNextSkills{}, rm)

	status, env := do(t, app, "GET", "/api/v1/roadmap/all", "", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var data struct {
		TotalUsers int            `json:"total_users"`
		Roadmaps   []roadmap.View `json:"roadmaps"`
	}
	if err := gojson.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.TotalUsers != 2 || len(data.Roadmaps) != 2 {
		t.Fatalf("unexpected %+v", data)
	}

	app, _ = newTestApp(t, &fakeNextSkills{}, &fakeRoadmaps{err: errors.Join(usecase.ErrUnavailable, errors.New("workbook missing"))})
	status, env = do(t, app, "GET", "/api/v1/roadmap/all", "", nil)
	if status != 503 || env.Message != messageRoadmapUnavailable {
		t.Fatalf("expected 503, got %d %+v", status, env)
	}
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(map[string]HealthCheck{
		"redis": func(context.Context) error { return nil },
	}).RegisterRoutes(app)

	status, env := do(t, app, "GET", "/health", "", nil)
	if status != 200 || !strings.Contains(string(env.Data), `"up"`) {
		t.Fatalf("expected healthy, got %d %+v", status, env)
	}

	app = fiber.New()
	NewHealthHandler(map[string]HealthCheck{
		"db": func(context.Context) error { return errors.New("down") },
	}).RegisterRoutes(app)
	status, _ = do(t, app, "GET", "/health", "", nil)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}
