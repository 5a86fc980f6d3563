package middleware

import (
	"net/http"

	"github.com/hitoshi/idman/internal/model"
)

// NewStoreGuardMiddleware はデータベース未接続時に配下のエンドポイントを
// 縮退応答にするミドルウェアを返す。
// storeAvailableがfalseの場合、500 STORE_UNAVAILABLEを返してハンドラーには到達させない。
// ヘルスチェックやメトリクスなどデータベースに依存しないルートには適用しないこと。
func NewStoreGuardMiddleware(storeAvailable bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !storeAvailable {
				WriteErrorResponse(w, http.StatusInternalServerError, model.NewStoreUnavailableError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
