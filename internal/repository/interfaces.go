// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/idman/internal/model"
)

// OtpSessionRepository はOTPセッションの永続化インターフェース。
// セッション履歴は追記のみで、削除は行わない。
type OtpSessionRepository interface {
	// Create は新しいOTPセッションを挿入する。常にinsertであり、既存レコードは変更しない。
	Create(ctx context.Context, session *model.OtpSession) error

	// FindLatestByPhone は指定電話番号のcreated_atが最新のセッションを1件取得する。
	// 見つからない場合はnilを返す。
	FindLatestByPhone(ctx context.Context, phone string) (*model.OtpSession, error)

	// MarkVerified は指定セッションIDのセッションをverified=trueに更新し、
	// updated_atにverifiedAtを記録する。更新対象はセッションID一致の1件のみ。
	MarkVerified(ctx context.Context, sessionID string, verifiedAt time.Time) error
}

// IdentityRepository はアイデンティティの永続化インターフェース。
type IdentityRepository interface {
	// FindByPhone は指定電話番号のアイデンティティを取得する。見つからない場合はnilを返す。
	FindByPhone(ctx context.Context, phone string) (*model.Identity, error)

	// Create はアイデンティティを新規作成する。
	Create(ctx context.Context, identity *model.Identity) error

	// UpdateByPhone は電話番号をキーにプロフィール項目とupdated_atをin-placeで更新する。
	// created_atは変更しない。
	UpdateByPhone(ctx context.Context, identity *model.Identity) error
}
