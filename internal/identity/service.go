// Package identity は本人確認済みプロフィールの登録と参照を提供する。
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/idman/internal/model"
	"github.com/hitoshi/idman/internal/phone"
	"github.com/hitoshi/idman/internal/repository"
)

// 登録結果のステータス。
const (
	StatusCreated = "CREATED"
	StatusUpdated = "UPDATED"
)

// OtpSessionFinder は登録ゲートが参照するOTPセッション検索のインターフェース。
// repository.OtpSessionRepositoryのうち検索のみを要求する。
type OtpSessionFinder interface {
	// FindLatestByPhone は指定電話番号の最新セッションを取得する。見つからない場合はnilを返す。
	FindLatestByPhone(ctx context.Context, phone string) (*model.OtpSession, error)
}

// Metrics は登録操作の結果を記録するインターフェース。
type Metrics interface {
	RecordRegistration(status string)
}

// RegisterInput は登録リクエストの入力値。
type RegisterInput struct {
	Phone            string
	Name             string
	Email            string
	Country          *string
	FaithAffirmation bool
}

// RegisterResult は登録操作の結果を表す。
type RegisterResult struct {
	Status string // CREATED または UPDATED
	Phone  string
}

// Service はアイデンティティ登録のビジネスロジックを提供する。
type Service struct {
	identityRepo  repository.IdentityRepository
	sessionFinder OtpSessionFinder
	metrics       Metrics
}

// NewService はServiceを生成する。metricsはnilを許容する。
func NewService(identityRepo repository.IdentityRepository, sessionFinder OtpSessionFinder, metrics Metrics) *Service {
	return &Service{
		identityRepo:  identityRepo,
		sessionFinder: sessionFinder,
		metrics:       metrics,
	}
}

// Register は3つのゲートを順に通過した場合のみアイデンティティをupsertする。
// ゲートは (1)最新OTPセッションが検証済み (2)価値観への同意 (3)コンプライアンス判定 の順で、
// 最初の不合格で打ち切る。検証状態は登録時点の最新セッションを読み直して判定するため、
// verifyとregisterの間に新しいセッションが発行されると未検証扱いで失敗する。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	normalized := phone.Normalize(input.Phone)

	// 1. 最新セッションが検証済みであること。セッション不在も同じ失敗になる。
	session, err := s.sessionFinder.FindLatestByPhone(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find otp session: %w", err)
	}
	if session == nil || !session.Verified {
		return nil, model.NewPhoneNotVerifiedError()
	}

	// 2. 価値観への同意
	if !input.FaithAffirmation {
		return nil, model.NewAffirmationRequiredError()
	}

	// 3. コンプライアンス判定
	if result := EvaluateCompliance(input.Country, input.Name, input.Email); !result.Pass {
		return nil, model.NewComplianceRejectedError(result.Flags)
	}

	// ゲート通過後、phoneをキーにupsertする
	existing, err := s.identityRepo.FindByPhone(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	now := time.Now()

	if existing != nil {
		updated := &model.Identity{
			Phone:            normalized,
			Name:             input.Name,
			Email:            input.Email,
			Country:          input.Country,
			FaithAffirmation: input.FaithAffirmation,
			CreatedAt:        existing.CreatedAt,
			UpdatedAt:        now,
		}

		if err := s.identityRepo.UpdateByPhone(ctx, updated); err != nil {
			return nil, fmt.Errorf("failed to update identity: %w", err)
		}

		s.recordRegistration(StatusUpdated)
		slog.Info("identity updated", slog.String("phone", normalized))

		return &RegisterResult{Status: StatusUpdated, Phone: normalized}, nil
	}

	identity := &model.Identity{
		Phone:            normalized,
		Name:             input.Name,
		Email:            input.Email,
		Country:          input.Country,
		FaithAffirmation: input.FaithAffirmation,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	s.recordRegistration(StatusCreated)
	slog.Info("identity created", slog.String("phone", normalized))

	return &RegisterResult{Status: StatusCreated, Phone: normalized}, nil
}

// GetIdentity は正規化した電話番号でアイデンティティを取得する。
// 見つからない場合はnilを返す。
func (s *Service) GetIdentity(ctx context.Context, rawPhone string) (*model.Identity, error) {
	normalized := phone.Normalize(rawPhone)

	identity, err := s.identityRepo.FindByPhone(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	return identity, nil
}

func (s *Service) recordRegistration(status string) {
	if s.metrics != nil {
		s.metrics.RecordRegistration(status)
	}
}
