// Package otp はワンタイムコードの発行と検証を提供する。
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/idman/internal/model"
	"github.com/hitoshi/idman/internal/phone"
	"github.com/hitoshi/idman/internal/repository"
)

// SessionTTL はOTPセッションの有効期間。
// 期限判定はexpires_atとの比較のみで行い、バックグラウンドでの掃除は行わない。
const SessionTTL = 5 * time.Minute

// コード生成範囲は[100000, 999999]の閉区間。
const (
	codeMin  = 100000
	codeSpan = 900000
)

// 検証結果のメトリクスラベル。
const (
	VerifyResultVerified    = "verified"
	VerifyResultNotFound    = "not_found"
	VerifyResultExpired     = "expired"
	VerifyResultInvalidCode = "invalid_code"
)

// Metrics はOTP操作の結果を記録するインターフェース。
type Metrics interface {
	RecordOtpSessionStarted()
	RecordOtpVerification(result string)
}

// StartResult はStartSessionの結果を表す。
type StartResult struct {
	Phone            string
	Code             string
	ExpiresInSeconds int
}

// VerifyResult はVerifySessionの結果を表す。
type VerifyResult struct {
	Phone string
}

// Service はOTPセッションのライフサイクルを管理する。
type Service struct {
	sessionRepo repository.OtpSessionRepository
	metrics     Metrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(sessionRepo repository.OtpSessionRepository, metrics Metrics) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		metrics:     metrics,
	}
}

// StartSession は指定電話番号に対する新しいOTPセッションを発行する。
// 既存セッションには一切触れず、常に新しいレコードを追記する。同一電話番号で
// 過去のコードと衝突しても構わない（チェックしない）。
// コードは結果に直接含まれる。デモ用のショートカットであり、本番では
// SMS等の帯域外チャネルで配送してレスポンスからは除外する。
func (s *Service) StartSession(ctx context.Context, rawPhone string) (*StartResult, error) {
	normalized := phone.Normalize(rawPhone)

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp code: %w", err)
	}

	now := time.Now()
	session := &model.OtpSession{
		ID:        uuid.New().String(),
		Phone:     normalized,
		Code:      code,
		Verified:  false,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save otp session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOtpSessionStarted()
	}

	slog.Info("otp session started",
		slog.String("phone", normalized),
		slog.String("session_id", session.ID),
	)

	return &StartResult{
		Phone:            normalized,
		Code:             code,
		ExpiresInSeconds: int(SessionTTL.Seconds()),
	}, nil
}

// VerifySession は最新のOTPセッションに対してコードを検証する。
// 対象は正規化後の電話番号でcreated_atが最新の1件のみ。古いセッションは参照しない。
// 成功時はそのセッションをverified=trueに更新する。検証済みかつ期限内のセッションへの
// 再検証は同じ効果で成功する（冪等）。
func (s *Service) VerifySession(ctx context.Context, rawPhone, code string) (*VerifyResult, error) {
	normalized := phone.Normalize(rawPhone)

	session, err := s.sessionRepo.FindLatestByPhone(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find otp session: %w", err)
	}
	if session == nil {
		s.recordVerification(VerifyResultNotFound)
		return nil, model.NewOtpSessionNotFoundError()
	}

	// 期限切れ判定はコード照合より先。expires_atちょうどはまだ有効。
	if time.Now().After(session.ExpiresAt) {
		s.recordVerification(VerifyResultExpired)
		return nil, model.NewOtpExpiredError()
	}

	// 平文の完全一致比較。試行回数の制限は設けない。
	if code != session.Code {
		s.recordVerification(VerifyResultInvalidCode)
		return nil, model.NewInvalidCodeError()
	}

	if err := s.sessionRepo.MarkVerified(ctx, session.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to mark otp session verified: %w", err)
	}

	s.recordVerification(VerifyResultVerified)

	slog.Info("otp session verified",
		slog.String("phone", normalized),
		slog.String("session_id", session.ID),
	)

	return &VerifyResult{Phone: normalized}, nil
}

func (s *Service) recordVerification(result string) {
	if s.metrics != nil {
		s.metrics.RecordOtpVerification(result)
	}
}

// generateCode は暗号乱数源から[100000, 999999]の範囲で一様な6桁コードを生成する。
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}
