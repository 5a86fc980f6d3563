package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/hitoshi/idman/internal/identity"
	"github.com/hitoshi/idman/internal/model"
)

// IdentityServiceInterface はアイデンティティハンドラーが必要とするサービスインターフェース。
type IdentityServiceInterface interface {
	// Register は登録ゲートを通過した場合のみアイデンティティをupsertする。
	Register(ctx context.Context, input identity.RegisterInput) (*identity.RegisterResult, error)
	// GetIdentity は電話番号でアイデンティティを取得する。見つからない場合はnilを返す。
	GetIdentity(ctx context.Context, phone string) (*model.Identity, error)
}

// IdentityHandler はアイデンティティ登録・参照のHTTPハンドラー。
type IdentityHandler struct {
	service IdentityServiceInterface
}

// NewIdentityHandler はIdentityHandlerを生成する。
func NewIdentityHandler(service IdentityServiceInterface) *IdentityHandler {
	return &IdentityHandler{service: service}
}

// registerIdentityRequest は本人情報登録リクエストのボディ。
type registerIdentityRequest struct {
	Phone            string  `json:"phone"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Country          *string `json:"country"`
	FaithAffirmation bool    `json:"faith_affirmation"`
}

// registerIdentityResponse は登録のAPIレスポンス。
type registerIdentityResponse struct {
	Status string `json:"status"`
	Phone  string `json:"phone"`
}

// identityResponse はアイデンティティ参照のAPIレスポンス。
type identityResponse struct {
	Phone            string    `json:"phone"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Country          *string   `json:"country"`
	FaithAffirmation bool      `json:"faith_affirmation"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
// flagsはコンプライアンス不合格時のみ付く。
type apiErrorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Category string   `json:"category"`
	Action   string   `json:"action"`
	Flags    []string `json:"flags,omitempty"`
}

// Register は本人情報の登録を処理する。
// POST /identity/register
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Phone == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("phoneが空です"))
		return
	}
	if req.Name == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("nameが空です"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidEmailError())
		return
	}

	result, err := h.service.Register(r.Context(), identity.RegisterInput{
		Phone:            req.Phone,
		Name:             req.Name,
		Email:            req.Email,
		Country:          req.Country,
		FaithAffirmation: req.FaithAffirmation,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registerIdentityResponse{
		Status: result.Status,
		Phone:  result.Phone,
	})
}

// Me は登録済みアイデンティティの参照を処理する。
// GET /identity/me?phone=...
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	phoneParam := r.URL.Query().Get("phone")
	if phoneParam == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("phoneクエリパラメータが必要です"))
		return
	}

	ident, err := h.service.GetIdentity(r.Context(), phoneParam)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if ident == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewIdentityNotFoundError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toIdentityResponse(ident))
}

// --- ヘルパー関数 ---

// toIdentityResponse はmodel.IdentityからAPIレスポンスに変換する。
func toIdentityResponse(ident *model.Identity) identityResponse {
	return identityResponse{
		Phone:            ident.Phone,
		Name:             ident.Name,
		Email:            ident.Email,
		Country:          ident.Country,
		FaithAffirmation: ident.FaithAffirmation,
		CreatedAt:        ident.CreatedAt,
		UpdatedAt:        ident.UpdatedAt,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Flags:    apiErr.Flags,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeOtpSessionNotFound, model.ErrCodeIdentityNotFound:
		return http.StatusNotFound
	case model.ErrCodeOtpExpired, model.ErrCodeInvalidCode,
		model.ErrCodePhoneNotVerified, model.ErrCodeAffirmationRequired,
		model.ErrCodeComplianceRejected, model.ErrCodeInvalidRequest,
		model.ErrCodeInvalidEmail:
		return http.StatusBadRequest
	case model.ErrCodeStoreUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
