// idman は電話番号OTPによる本人確認と登録を提供するAPIサーバー。
// サブコマンド: serve（デフォルト）, healthcheck
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/idman/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "idman: %v\n", err)
		os.Exit(1)
	}
}
