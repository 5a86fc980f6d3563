// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string   // エラーコード
	Message  string   // エラーメッセージ
	Category string   // カテゴリ: otp, identity, validation, system
	Action   string   // ユーザー向け対処方法
	Flags    []string // コンプライアンス判定フラグ（COMPLIANCE_REJECTEDのみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeOtpSessionNotFound  = "OTP_SESSION_NOT_FOUND"
	ErrCodeOtpExpired          = "OTP_EXPIRED"
	ErrCodeInvalidCode         = "INVALID_CODE"
	ErrCodePhoneNotVerified    = "PHONE_NOT_VERIFIED"
	ErrCodeAffirmationRequired = "AFFIRMATION_REQUIRED"
	ErrCodeComplianceRejected  = "COMPLIANCE_REJECTED"
	ErrCodeIdentityNotFound    = "IDENTITY_NOT_FOUND"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
)

// コンプライアンス判定フラグ
const (
	FlagCountryUnsupported = "COUNTRY_UNSUPPORTED"
	FlagSuspectName        = "SUSPECT_NAME"
)

// NewStoreUnavailableError はデータベース未接続エラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データベースに接続できないため、この操作は利用できません。",
		Category: "system",
		Action:   "DATABASE_URLの設定とデータベースの稼働状態を確認してください。",
	}
}

// NewOtpSessionNotFoundError はOTPセッション未検出エラーを生成する。
func NewOtpSessionNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeOtpSessionNotFound,
		Message:  "この電話番号のOTPセッションが見つかりません。",
		Category: "otp",
		Action:   "先にOTPコードの発行をリクエストしてください。",
	}
}

// NewOtpExpiredError はOTP期限切れエラーを生成する。
func NewOtpExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeOtpExpired,
		Message:  "OTPコードの有効期限が切れています。",
		Category: "otp",
		Action:   "新しいOTPコードを発行して、再度お試しください。",
	}
}

// NewInvalidCodeError はコード不一致エラーを生成する。
func NewInvalidCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCode,
		Message:  "OTPコードが一致しません。",
		Category: "otp",
		Action:   "送信されたコードを確認して、再入力してください。",
	}
}

// NewPhoneNotVerifiedError は電話番号未確認エラーを生成する。
func NewPhoneNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodePhoneNotVerified,
		Message:  "電話番号がOTPで確認されていません。",
		Category: "identity",
		Action:   "先にOTPコードの発行と確認を完了してください。",
	}
}

// NewAffirmationRequiredError は価値観同意未チェックエラーを生成する。
func NewAffirmationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAffirmationRequired,
		Message:  "プラットフォームの価値観への同意が必要です。",
		Category: "identity",
		Action:   "faith_affirmationをtrueにして、再度登録してください。",
	}
}

// NewComplianceRejectedError はコンプライアンス不合格エラーを生成する。
// flagsには検出順のコンプライアンスフラグを渡す。
func NewComplianceRejectedError(flags []string) *APIError {
	return &APIError{
		Code:     ErrCodeComplianceRejected,
		Message:  "コンプライアンスチェックに失敗しました。",
		Category: "identity",
		Action:   "登録内容（国コード、氏名）を確認してください。",
		Flags:    flags,
	}
}

// NewIdentityNotFoundError はアイデンティティ未検出エラーを生成する。
func NewIdentityNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeIdentityNotFound,
		Message:  "アイデンティティが見つかりません。",
		Category: "identity",
		Action:   "電話番号を確認するか、先に登録を完了してください。",
	}
}

// NewInvalidRequestError は無効なリクエストエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("無効なリクエストです: %s", reason),
		Category: "validation",
		Action:   "リクエストの形式と必須項目を確認してください。",
	}
}

// NewInvalidEmailError は無効なメールアドレスエラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: "validation",
		Action:   "有効なメールアドレスを入力してください。",
	}
}
