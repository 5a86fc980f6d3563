package handler

import (
	"encoding/json"
	"net/http"
)

// SystemHandler は死活確認と疎通確認のHTTPハンドラー。
type SystemHandler struct {
	storeAvailable bool
}

// NewSystemHandler はSystemHandlerを生成する。
func NewSystemHandler(storeAvailable bool) *SystemHandler {
	return &SystemHandler{storeAvailable: storeAvailable}
}

// messageResponse は挨拶エンドポイントのAPIレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// healthResponse は死活確認のAPIレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Root はルートパスの挨拶を返す。
// GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Hello from idman backend!"})
}

// Hello はフロントエンドからの疎通確認用の挨拶を返す。
// GET /api/hello
func (h *SystemHandler) Hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{Message: "Hello from the backend API!"})
}

// Health はプロセスの死活とデータベース接続状態を返す。
// データベース未接続でも200を返す。プロセスが応答できていれば稼働中とみなす。
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	database := "disconnected"
	if h.storeAvailable {
		database = "connected"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:   "ok",
		Database: database,
	})
}
