package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/hitoshi/idman/internal/config"
	"github.com/hitoshi/idman/internal/database"
	"github.com/hitoshi/idman/internal/handler"
	"github.com/hitoshi/idman/internal/identity"
	"github.com/hitoshi/idman/internal/logger"
	"github.com/hitoshi/idman/internal/metrics"
	"github.com/hitoshi/idman/internal/otp"
	"github.com/hitoshi/idman/internal/repository"
)

// storeConnectTimeout は起動時のストア到達確認のタイムアウト。
const storeConnectTimeout = 5 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// ストア接続を試み、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ストアに到達できない場合もプロセスは落とさず、identity系ルートだけを
// 縮退応答にした状態で起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. メトリクスの初期化。縮退モードでも計測は生かす
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
	}

	// 2. ストア接続。到達できなければ縮退モードのままサービスはnilにする
	client := connectStore(cfg)
	if client != nil {
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("failed to disconnect mongodb", slog.String("error", err.Error()))
			}
		}()

		// 3. リポジトリとサービスの初期化
		db := client.Database(cfg.DatabaseName)
		otpRepo := repository.NewMongoOtpSessionRepo(db)
		identityRepo := repository.NewMongoIdentityRepo(db)

		deps.StoreAvailable = true
		deps.OtpService = otp.NewService(otpRepo, collector)
		deps.IdentityService = identity.NewService(identityRepo, otpRepo, collector)
	}

	// 4. ルーターの構築
	router := handler.NewRouter(deps)

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.Bool("store_available", deps.StoreAvailable),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// connectStore はMongoDBへの接続を試みる。
// DATABASE_URLが未設定、または到達確認に失敗した場合はnilを返し、
// 呼び出し側は縮退モードで起動を続行する。
func connectStore(cfg *config.Config) *mongo.Client {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL is not set, starting in degraded mode without store")
		return nil
	}

	client, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Warn("failed to create mongodb client, starting in degraded mode",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
			slog.String("error", err.Error()),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()

	if err := database.Ping(ctx, client); err != nil {
		slog.Warn("mongodb is unreachable, starting in degraded mode",
			slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
			slog.String("error", err.Error()),
		)
		_ = client.Disconnect(context.Background())
		return nil
	}

	slog.Info("database connection established",
		slog.String("database", cfg.DatabaseName),
	)
	return client
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
