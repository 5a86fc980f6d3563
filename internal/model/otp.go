// Package model はドメインモデルを定義する。
package model

import "time"

// OtpSession は電話番号に対するワンタイムコードのセッションを表す。
// 同一電話番号のセッションは追記のみで蓄積され、created_atが最新の1件だけが
// 有効とみなされる。古いセッションは削除も再利用もされない。
type OtpSession struct {
	ID        string    // サービスが発行するセッションID
	Phone     string    // 正規化済み電話番号
	Code      string    // 6桁の数字文字列
	Verified  bool      // 検証済みフラグ。初期値はfalse。
	CreatedAt time.Time // 発行時刻
	ExpiresAt time.Time // 有効期限（発行時刻 + 5分）
	UpdatedAt time.Time // verifiedがtrueに遷移した時刻。未検証の間はゼロ値。
}
