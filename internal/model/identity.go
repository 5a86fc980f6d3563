// Package model はドメインモデルを定義する。
package model

import "time"

// Identity は電話番号を一意キーとする本人確認済みプロフィールを表す。
// 1電話番号につき高々1件のみ存在し、再登録時は同一レコードをin-placeで更新する。
type Identity struct {
	Phone            string
	Name             string
	Email            string
	Country          *string // 任意項目。nilまたは空文字は「未指定」として扱う。
	FaithAffirmation bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
