package identity

import (
	"strings"

	"github.com/hitoshi/idman/internal/model"
)

// allowedCountries は登録を受け付ける国コードの固定集合。
var allowedCountries = map[string]struct{}{
	"CI": {},
	"SN": {},
	"BJ": {},
	"TG": {},
	"CM": {},
	"GA": {},
	"CG": {},
	"CD": {},
}

// suspectNameParts は氏名に含まれるとSUSPECT_NAMEフラグを立てる部分文字列。
var suspectNameParts = []string{"test", "fake", "demo"}

// ComplianceResult はコンプライアンス判定の結果を表す。
// フラグが1つでも立つと不合格。
type ComplianceResult struct {
	Pass  bool
	Flags []string
}

// EvaluateCompliance は最小限のルールベースKYC判定を行う。
// 国コードが指定され、かつ大文字化後に許可集合に含まれない場合はCOUNTRY_UNSUPPORTED、
// 小文字化した氏名が疑わしい部分文字列を含む場合はSUSPECT_NAMEを立てる。
// 未指定（nilまたは空文字）の国コードはフラグを立てない。
// フラグは検出順（国コード→氏名）で返す。emailは現行ルールでは使用しない。
func EvaluateCompliance(country *string, name, email string) ComplianceResult {
	var flags []string

	if country != nil && *country != "" {
		if _, ok := allowedCountries[strings.ToUpper(*country)]; !ok {
			flags = append(flags, model.FlagCountryUnsupported)
		}
	}

	lower := strings.ToLower(name)
	for _, bad := range suspectNameParts {
		if strings.Contains(lower, bad) {
			flags = append(flags, model.FlagSuspectName)
			break
		}
	}

	return ComplianceResult{
		Pass:  len(flags) == 0,
		Flags: flags,
	}
}
