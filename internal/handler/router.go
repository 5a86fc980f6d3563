package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/idman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
// StoreAvailableがfalseの場合、OtpServiceとIdentityServiceはnilでよい。
// ストアガードが先に応答するため、ハンドラーには到達しない。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	StoreAvailable    bool
	Metrics           middleware.HTTPMetrics
	MetricsHandler    http.Handler

	// OTP
	OtpService OtpServiceInterface

	// アイデンティティ
	IdentityService IdentityServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Metrics → Recovery
//
// システムルート（/、/api/hello、/health、/metrics）はストアガードの外に配置し、
// データベース未接続でも応答できるようにする。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())

	otpHandler := NewOtpHandler(deps.OtpService)
	identityHandler := NewIdentityHandler(deps.IdentityService)
	systemHandler := NewSystemHandler(deps.StoreAvailable)

	// --- データベースに依存しないルート ---

	r.Get("/", systemHandler.Root)
	r.Get("/api/hello", systemHandler.Hello)
	r.Get("/health", systemHandler.Health)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- ストアガード配下のルート ---
	// データベース未接続時は500 STORE_UNAVAILABLEの縮退応答になる
	r.Route("/identity", func(r chi.Router) {
		r.Use(middleware.NewStoreGuardMiddleware(deps.StoreAvailable))

		// OTPライフサイクル
		r.Post("/otp/start", otpHandler.StartOtp)
		r.Post("/otp/verify", otpHandler.VerifyOtp)

		// 登録と参照
		r.Post("/register", identityHandler.Register)
		r.Get("/me", identityHandler.Me)
	})

	return r
}
