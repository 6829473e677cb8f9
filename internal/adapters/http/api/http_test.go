package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/candidateboard/internal/adapters/export"
	"github.com/okian/candidateboard/internal/adapters/http/api"
	"github.com/okian/candidateboard/internal/adapters/repository"
	service "github.com/okian/candidateboard/internal/app"
	"github.com/okian/candidateboard/internal/domain/model"
	"github.com/okian/candidateboard/internal/domain/query"
	"github.com/okian/candidateboard/internal/domain/ranking"
	"github.com/okian/candidateboard/internal/domain/scoring"
	"github.com/okian/candidateboard/internal/domain/types"
	"github.com/okian/candidateboard/pkg/logger"
)

// mockDeps records the parameters it receives and answers from a fixed list.
type mockDeps struct {
	ranked      []model.RankedCandidate
	lastParams  query.Params
	lastCount   int
	regenErr    error
	exportErr   error
	exportCalls []export.Format
}

func newMockDeps() *mockDeps {
	list := scoring.RepairAll([]model.Candidate{
		{ID: 1, Name: "Maria Garcia", Skills: []string{"Operations", "Logistics"}, CrisisManagementScore: 90, SustainabilityScore: 90, TeamMotivationScore: 90},
		{ID: 2, Name: "James Smith", Skills: []string{"Logistics"}, CrisisManagementScore: 60, SustainabilityScore: 60, TeamMotivationScore: 60},
	})
	return &mockDeps{ranked: ranking.Rank(list)}
}

func (m *mockDeps) Query(_ context.Context, p query.Params) query.Page {
	m.lastParams = p
	return query.Run(m.ranked, p)
}

func (m *mockDeps) Candidate(_ context.Context, id int) (types.Card, error) {
	r, ok := ranking.Find(m.ranked, id)
	if !ok {
		return types.Card{}, fmt.Errorf("%w: %d", service.ErrNotFound, id)
	}
	return types.NewCard(r), nil
}

func (m *mockDeps) Skills(_ context.Context) []model.SkillAggregate {
	return []model.SkillAggregate{{Skill: "Logistics", Count: 2, AvgTotal: 75}}
}

func (m *mockDeps) SkillNames(_ context.Context) []string {
	return []string{"Logistics", "Operations"}
}

func (m *mockDeps) Regenerate(_ context.Context, n int) (types.Generation, error) {
	m.lastCount = n
	gen := types.Generation{BatchID: "b-1", Count: n, Persisted: m.regenErr == nil}
	return gen, m.regenErr
}

func (m *mockDeps) Export(_ context.Context, f export.Format) ([]byte, error) {
	m.exportCalls = append(m.exportCalls, f)
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return []byte("payload:" + string(f)), nil
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "totalCandidates": len(m.ranked)}
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestCandidatesEndpoints(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps, api.WithMaxPageSize(50))

		Convey("When listing candidates with filters", func() {
			w := do(mux, http.MethodGet, "/candidates?q=mar&skills=Operations,%20Logistics&skills=Maintenance&sort=experience&order=DESC&page=1&page_size=5")

			Convey("Then parameters reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastParams.Search, ShouldEqual, "mar")
				So(deps.lastParams.Skills, ShouldResemble, []string{"Operations", "Logistics", "Maintenance"})
				So(deps.lastParams.SortBy, ShouldEqual, "experience")
				So(deps.lastParams.Order, ShouldEqual, "desc")
				So(deps.lastParams.PageSize, ShouldEqual, 5)
			})

			Convey("And the page is returned as JSON", func() {
				var page query.Page
				So(json.Unmarshal(w.Body.Bytes(), &page), ShouldBeNil)
				So(page.Items, ShouldHaveLength, 1)
				So(page.Items[0].Name, ShouldEqual, "Maria Garcia")
				So(page.TotalCount, ShouldEqual, 2)
			})
		})

		Convey("When a skill filter matches nobody", func() {
			w := do(mux, http.MethodGet, "/candidates?skills=Underwater%20Welding")

			Convey("Then an empty page with one total page is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var page query.Page
				So(json.Unmarshal(w.Body.Bytes(), &page), ShouldBeNil)
				So(page.Items, ShouldBeEmpty)
				So(page.TotalPages, ShouldEqual, 1)
			})
		})

		Convey("When the page is not a number", func() {
			w := do(mux, http.MethodGet, "/candidates?page=two")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
		})

		Convey("When the page size is too large", func() {
			w := do(mux, http.MethodGet, "/candidates?page_size=500")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the order is invalid", func() {
			w := do(mux, http.MethodGet, "/candidates?order=sideways")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When posting to the list", func() {
			w := do(mux, http.MethodPost, "/candidates")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
		})

		Convey("When fetching a known candidate", func() {
			w := do(mux, http.MethodGet, "/candidates/2")

			Convey("Then the card includes rank and tier", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var card map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &card), ShouldBeNil)
				So(card["rank"], ShouldEqual, 2.0)
				So(card["tier"], ShouldEqual, "needs_improvement")
			})
		})

		Convey("When fetching an unknown candidate", func() {
			w := do(mux, http.MethodGet, "/candidates/99")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
		})

		Convey("When the id is malformed", func() {
			So(do(mux, http.MethodGet, "/candidates/abc").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/candidates/1/extra").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestSkillsEndpoints(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("When requesting aggregates", func() {
			w := do(mux, http.MethodGet, "/skills")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"avgTotal":75`)
		})

		Convey("When requesting names", func() {
			w := do(mux, http.MethodGet, "/skills/names")
			So(w.Code, ShouldEqual, http.StatusOK)
			var names []string
			So(json.Unmarshal(w.Body.Bytes(), &names), ShouldBeNil)
			So(names, ShouldResemble, []string{"Logistics", "Operations"})
		})
	})
}

func TestRegenerateEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps, api.WithMaxRegenerate(100))

		Convey("When regenerating with a count", func() {
			w := do(mux, http.MethodPost, "/regenerate?count=25")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastCount, ShouldEqual, 25)
			So(w.Body.String(), ShouldContainSubstring, `"persisted":true`)
		})

		Convey("When regenerating without a count", func() {
			So(do(mux, http.MethodPost, "/regenerate").Code, ShouldEqual, http.StatusOK)
			So(deps.lastCount, ShouldEqual, 0)
		})

		Convey("When the count is invalid or too large", func() {
			So(do(mux, http.MethodPost, "/regenerate?count=-1").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/regenerate?count=101").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When storage rejects the write", func() {
			deps.regenErr = fmt.Errorf("%w: quota", repository.ErrPersist)
			w := do(mux, http.MethodPost, "/regenerate?count=3")

			Convey("Then the request still succeeds with persisted=false", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"persisted":false`)
			})
		})

		Convey("When generation itself fails", func() {
			deps.regenErr = errors.New("generator exploded")
			So(do(mux, http.MethodPost, "/regenerate").Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When using GET", func() {
			So(do(mux, http.MethodGet, "/regenerate").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestExportEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When exporting SQL", func() {
			w := do(mux, http.MethodGet, "/export/sql")

			Convey("Then an attachment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/sql")
				So(w.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="seed_data.sql"`)
				So(w.Body.String(), ShouldEqual, "payload:sql")
			})
		})

		Convey("When the format is unknown", func() {
			w := do(mux, http.MethodGet, "/export/pdf")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "unknown_format")
			So(deps.exportCalls, ShouldBeEmpty)
		})

		Convey("When rendering fails", func() {
			deps.exportErr = errors.New("disk full")
			w := do(mux, http.MethodGet, "/export/xlsx")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "export failed")
		})
	})
}

func TestStatsAndHealth(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("When requesting stats", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			So(w.Body.String(), ShouldContainSubstring, `"totalCandidates":2`)
		})

		Convey("When requesting health after some traffic", func() {
			_ = do(mux, http.MethodGet, "/candidates")
			w := do(mux, http.MethodGet, "/healthz")

			Convey("Then Prometheus metrics are exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "candidateboard_pipeline_http_requests_total")
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("When the caller sends a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/skills/names", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-123")
			})
		})

		Convey("When the caller sends none", func() {
			w := do(mux, http.MethodGet, "/skills/names")

			Convey("Then a UUID is assigned", func() {
				id := w.Header().Get(api.RequestIDHeader)
				So(id, ShouldHaveLength, 36)
				So(strings.Count(id, "-"), ShouldEqual, 4)
			})
		})

		Convey("When a handler reads the id from the context", func() {
			var seen string
			h := api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
				seen = api.RequestIDFromContext(r.Context())
			})
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "ctx-id")
			h(httptest.NewRecorder(), req)
			So(seen, ShouldEqual, "ctx-id")
		})
	})
}

// recordingLogger keeps every entry so tests can inspect request logging.
type recordingLogger struct {
	fields  []logger.Field
	entries *[]logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields []logger.Field
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{entries: &[]logEntry{}}
}

func (l *recordingLogger) record(level, msg string, fields []logger.Field) {
	all := append(append([]logger.Field(nil), l.fields...), fields...)
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: all})
}

func (l *recordingLogger) Info(_ context.Context, msg string, f ...logger.Field) {
	l.record("info", msg, f)
}
func (l *recordingLogger) Error(_ context.Context, msg string, f ...logger.Field) {
	l.record("error", msg, f)
}
func (l *recordingLogger) Debug(_ context.Context, msg string, f ...logger.Field) {
	l.record("debug", msg, f)
}
func (l *recordingLogger) Warn(_ context.Context, msg string, f ...logger.Field) {
	l.record("warn", msg, f)
}
func (l *recordingLogger) Fatal(_ context.Context, msg string, f ...logger.Field) {
	l.record("fatal", msg, f)
}
func (l *recordingLogger) Named(string) logger.Logger { return l }
func (l *recordingLogger) With(f ...logger.Field) logger.Logger {
	return &recordingLogger{fields: append(append([]logger.Field(nil), l.fields...), f...), entries: l.entries}
}

func fieldValue(fields []logger.Field, key string) any {
	for _, f := range fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

func TestRequestLogging(t *testing.T) {
	Convey("Given an API server with a logger", t, func() {
		deps := newMockDeps()
		log := newRecordingLogger()
		mux := newMux(deps, api.WithLogger(log))

		Convey("When a request succeeds", func() {
			req := httptest.NewRequest(http.MethodGet, "/skills/names", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "trace-7")
			mux.ServeHTTP(httptest.NewRecorder(), req)

			Convey("Then one debug entry carries the request id", func() {
				So(*log.entries, ShouldHaveLength, 1)
				entry := (*log.entries)[0]
				So(entry.level, ShouldEqual, "debug")
				So(fieldValue(entry.fields, "request_id"), ShouldEqual, "trace-7")
				So(fieldValue(entry.fields, "endpoint"), ShouldEqual, "skill_names")
				So(fieldValue(entry.fields, "status"), ShouldEqual, http.StatusOK)
			})
		})

		Convey("When a handler fails", func() {
			deps.exportErr = errors.New("disk full")
			w := do(mux, http.MethodGet, "/export/json")

			Convey("Then an error entry is tagged with the id sent back to the caller", func() {
				So(*log.entries, ShouldHaveLength, 1)
				entry := (*log.entries)[0]
				So(entry.level, ShouldEqual, "error")
				So(fieldValue(entry.fields, "status"), ShouldEqual, http.StatusInternalServerError)
				So(fieldValue(entry.fields, "request_id"), ShouldEqual, w.Header().Get(api.RequestIDHeader))
			})
		})
	})
}
