package respond

import (
	"regexp"
)

var (
	// DSN やフィード URL に埋め込まれた認証情報（user:pass@host）
	urlCredentialsPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
	// クエリ文字列のトークン類（api_key, apikey, token, access_token）
	queryTokenPattern = regexp.MustCompile(`(?i)((?:api_?key|(?:access_)?token)=)[^&\s]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す。
// 接続文字列のパスワードやフィード URL に付くトークンがそのまま
// ログへ流れないようにする。
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = urlCredentialsPattern.ReplaceAllString(msg, "://$1:****@")
	msg = queryTokenPattern.ReplaceAllString(msg, "$1****")
	return msg
}
