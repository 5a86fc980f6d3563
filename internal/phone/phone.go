// Package phone はMSISDN（国際形式の電話番号）の文字列正規化を提供する。
package phone

import "strings"

// Normalize はMSISDNの表記ゆれを整えて返す。
// 前後の空白を除去し、途中の空白文字をすべて取り除いたうえで、
// 「+」で始まらず「00」で始まる場合のみ国際プレフィックスを「+」に置き換える。
// 実在性の検証（E.164パース等）は行わない。
func Normalize(msisdn string) string {
	msisdn = strings.ReplaceAll(strings.TrimSpace(msisdn), " ", "")
	if !strings.HasPrefix(msisdn, "+") && strings.HasPrefix(msisdn, "00") {
		msisdn = "+" + msisdn[2:]
	}
	return msisdn
}
