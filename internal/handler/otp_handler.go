package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/idman/internal/model"
	"github.com/hitoshi/idman/internal/otp"
)

// OtpServiceInterface はOTPハンドラーが必要とするサービスインターフェース。
type OtpServiceInterface interface {
	// StartSession は新しいOTPセッションを発行する。
	StartSession(ctx context.Context, phone string) (*otp.StartResult, error)
	// VerifySession は最新セッションに対してコードを検証する。
	VerifySession(ctx context.Context, phone, code string) (*otp.VerifyResult, error)
}

// OtpHandler はOTPセッションのHTTPハンドラー。
type OtpHandler struct {
	service OtpServiceInterface
}

// NewOtpHandler はOtpHandlerを生成する。
func NewOtpHandler(service OtpServiceInterface) *OtpHandler {
	return &OtpHandler{service: service}
}

// startOtpRequest はOTP発行リクエストのボディ。
type startOtpRequest struct {
	Phone string `json:"phone"`
}

// verifyOtpRequest はOTP検証リクエストのボディ。
type verifyOtpRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// startOtpResponse はOTP発行のAPIレスポンス。
// debug_codeはデモ用のショートカット。SMS配送に切り替える際はフィールドごと削除する。
type startOtpResponse struct {
	Status           string `json:"status"`
	Phone            string `json:"phone"`
	ExpiresInSeconds int    `json:"expires_in_sec"`
	DebugCode        string `json:"debug_code"`
}

// verifyOtpResponse はOTP検証のAPIレスポンス。
type verifyOtpResponse struct {
	Status string `json:"status"`
	Phone  string `json:"phone"`
}

// StartOtp はOTPセッションの発行を処理する。
// POST /identity/otp/start
func (h *OtpHandler) StartOtp(w http.ResponseWriter, r *http.Request) {
	var req startOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Phone == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("phoneが空です"))
		return
	}

	result, err := h.service.StartSession(r.Context(), req.Phone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(startOtpResponse{
		Status:           "OTP_SENT",
		Phone:            result.Phone,
		ExpiresInSeconds: result.ExpiresInSeconds,
		DebugCode:        result.Code,
	})
}

// VerifyOtp はOTPコードの検証を処理する。
// POST /identity/otp/verify
func (h *OtpHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req verifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Phone == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("phoneが空です"))
		return
	}
	if req.Code == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("codeが空です"))
		return
	}

	result, err := h.service.VerifySession(r.Context(), req.Phone, req.Code)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(verifyOtpResponse{
		Status: "VERIFIED",
		Phone:  result.Phone,
	})
}
