package drafts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/drewmudry/vibecast-api/models"
	"github.com/drewmudry/vibecast-api/processing"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingGenerator struct{ err error }

func (g failingGenerator) Generate(context.Context, models.Brief) (models.Draft, error) {
	return models.Draft{}, g.err
}

func newRouter(g Generator) *gin.Engine {
	router := gin.New()
	router.POST("/api/generate", NewHandler(g).GenerateDraft)
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateDraft_MockWithoutProvider(t *testing.T) {
	router := newRouter(processing.NewDraftGenerator(nil, ""))

	w := post(router, `{"topic": "Launch recap", "duration": 10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Script       string           `json:"script"`
		Segments     []models.Segment `json:"segments"`
		AudioURL     *string          `json:"audioUrl"`
		CallToAction *string          `json:"callToAction"`
		ModelID      *string          `json:"modelId"`
		Note         string           `json:"note"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Note != processing.MockDraftNote {
		t.Errorf("note = %q", resp.Note)
	}
	if !reflect.DeepEqual(resp.Segments, processing.FallbackSegments()) {
		t.Errorf("segments = %+v", resp.Segments)
	}
	if resp.AudioURL != nil || resp.ModelID != nil || resp.CallToAction != nil {
		t.Errorf("expected nulls, got %s", w.Body.String())
	}
	if !strings.Contains(resp.Script, "launch recap") {
		t.Errorf("script = %q", resp.Script)
	}
	for _, key := range []string{`"audioUrl":null`, `"modelId":null`, `"callToAction":null`} {
		if !strings.Contains(w.Body.String(), key) {
			t.Errorf("body missing %s: %s", key, w.Body.String())
		}
	}
}

func TestGenerateDraft_ValidationErrors(t *testing.T) {
	router := newRouter(processing.NewDraftGenerator(nil, ""))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing topic", `{"duration": 10}`, "A topic is required to generate an episode."},
		{"missing duration", `{"topic": "Launch recap"}`, "Please provide a numeric duration (minutes)."},
		{"bad duration", `{"topic": "Launch recap", "duration": "soon"}`, "Please provide a numeric duration (minutes)."},
		{"numeric topic", `{"topic": 42, "duration": 10}`, "A topic is required to generate an episode."},
		{"invalid json", `{"topic":`, "Invalid JSON payload."},
		{"numeric tone", `{"topic": "Launch recap", "duration": 10, "tone": 3}`, "Invalid JSON payload."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp map[string]string
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["error"] != tt.want {
				t.Errorf("error = %q, want %q", resp["error"], tt.want)
			}
		})
	}
}

func TestGenerateDraft_ProviderFailure(t *testing.T) {
	router := newRouter(failingGenerator{err: &processing.ProviderError{Message: "model not found"}})

	w := post(router, `{"topic": "Launch recap", "duration": 10}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "model not found" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestGenerateDraft_PassesBrief(t *testing.T) {
	var got models.Brief
	g := generatorFunc(func(ctx context.Context, b models.Brief) (models.Draft, error) {
		got = b
		return models.Draft{Script: "ok", Segments: []models.Segment{}}, nil
	})

	w := post(newRouter(g), `{"topic": " Launch ", "duration": "2", "tone": "calm", "callToAction": "Subscribe"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := models.Brief{Topic: "Launch", Tone: "calm", HostStyle: "storyteller", Duration: 3, CallToAction: "Subscribe"}
	if got != want {
		t.Errorf("brief = %+v, want %+v", got, want)
	}
}

type generatorFunc func(ctx context.Context, b models.Brief) (models.Draft, error)

func (f generatorFunc) Generate(ctx context.Context, b models.Brief) (models.Draft, error) {
	return f(ctx, b)
}
