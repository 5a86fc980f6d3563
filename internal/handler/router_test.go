package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/idman/internal/identity"
	"github.com/hitoshi/idman/internal/metrics"
	"github.com/hitoshi/idman/internal/model"
	"github.com/hitoshi/idman/internal/otp"
)

// newTestRouterDeps は正常系モックとメトリクスを揃えたRouterDepsを構築する。
func newTestRouterDeps() *RouterDeps {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	return &RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		StoreAvailable:    true,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
		OtpService: &mockOtpService{
			startSessionFn: func(ctx context.Context, phone string) (*otp.StartResult, error) {
				return &otp.StartResult{Phone: "+22501020304", Code: "123456", ExpiresInSeconds: 300}, nil
			},
			verifySessionFn: func(ctx context.Context, phone, code string) (*otp.VerifyResult, error) {
				return &otp.VerifyResult{Phone: "+22501020304"}, nil
			},
		},
		IdentityService: &mockIdentityService{
			registerFn: func(ctx context.Context, input identity.RegisterInput) (*identity.RegisterResult, error) {
				return &identity.RegisterResult{Status: "CREATED", Phone: "+22501020304"}, nil
			},
			getIdentityFn: func(ctx context.Context, phone string) (*model.Identity, error) {
				return &model.Identity{
					Phone:            "+22501020304",
					Name:             "Awa Diabate",
					Email:            "awa@example.com",
					FaithAffirmation: true,
					CreatedAt:        time.Now(),
					UpdatedAt:        time.Now(),
				}, nil
			},
		},
	}
}

func TestNewRouter_SystemRoutes(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	tests := []struct {
		path string
	}{
		{path: "/"},
		{path: "/api/hello"},
		{path: "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Result().StatusCode != http.StatusOK {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Result().StatusCode, http.StatusOK)
			}
		})
	}
}

func TestNewRouter_MetricsEndpoint_ServesPrometheusFormat(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	// 先に1リクエスト流してHTTPメトリクスを記録させる
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "idman_http_status_total") {
		t.Error("metrics output should contain idman_http_status_total")
	}
}

func TestNewRouter_OtpRoutes(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	// POST /identity/otp/start
	body := strings.NewReader(`{"phone": "+22501020304"}`)
	req := httptest.NewRequest(http.MethodPost, "/identity/otp/start", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("POST /identity/otp/start status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var startResp startOtpResponse
	json.NewDecoder(w.Result().Body).Decode(&startResp)
	if startResp.Status != "OTP_SENT" {
		t.Errorf("status = %q, want %q", startResp.Status, "OTP_SENT")
	}

	// POST /identity/otp/verify
	body = strings.NewReader(`{"phone": "+22501020304", "code": "123456"}`)
	req = httptest.NewRequest(http.MethodPost, "/identity/otp/verify", body)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("POST /identity/otp/verify status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestNewRouter_RegisterAndMeRoutes(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	// POST /identity/register
	body := strings.NewReader(`{"phone": "+22501020304", "name": "Awa Diabate", "email": "awa@example.com", "faith_affirmation": true}`)
	req := httptest.NewRequest(http.MethodPost, "/identity/register", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("POST /identity/register status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// GET /identity/me
	req = httptest.NewRequest(http.MethodGet, "/identity/me?phone=%2B22501020304", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET /identity/me status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestNewRouter_UnknownRoute_Returns404(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/identity/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("GET /identity/unknown status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

func TestNewRouter_WrongMethod_Returns405(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/identity/otp/start", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /identity/otp/start status = %d, want %d", w.Result().StatusCode, http.StatusMethodNotAllowed)
	}
}

// TestNewRouter_DegradedMode はデータベース未接続時にidentity系のみが
// 縮退応答になり、システムルートは生き続けることを検証する。
func TestNewRouter_DegradedMode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	// 縮退モードではサービスはnilのまま。ストアガードが先に応答する。
	deps := &RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		StoreAvailable:    false,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
	}
	router := NewRouter(deps)

	// identity系は500 STORE_UNAVAILABLE
	identityPaths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/identity/otp/start"},
		{http.MethodPost, "/identity/otp/verify"},
		{http.MethodPost, "/identity/register"},
		{http.MethodGet, "/identity/me?phone=%2B22501020304"},
	}

	for _, tt := range identityPaths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
			}

			var got apiErrorResponse
			json.NewDecoder(resp.Body).Decode(&got)
			if got.Code != "STORE_UNAVAILABLE" {
				t.Errorf("code = %q, want %q", got.Code, "STORE_UNAVAILABLE")
			}
		})
	}

	// システムルートは200のまま
	t.Run("health stays up", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET /health status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var got healthResponse
		json.NewDecoder(resp.Body).Decode(&got)
		if got.Database != "disconnected" {
			t.Errorf("database = %q, want %q", got.Database, "disconnected")
		}
	})
}

// TestNewRouter_AppliesAmbientMiddleware はCORSとセキュリティヘッダーが
// 全ルートに適用されることを検証する。
func TestNewRouter_AppliesAmbientMiddleware(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-store")
	}
}
