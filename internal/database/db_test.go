package database

import (
	"context"
	"testing"
)

// TestConnect_WithWellFormedURL_ReturnsClient はmongo.Connectが接続を試行しないため、
// 整形式のURIであればサーバー不在でもクライアントが返ることを検証する。
// 実際の到達確認にはPingが必要。
func TestConnect_WithWellFormedURL_ReturnsClient(t *testing.T) {
	client, err := Connect("mongodb://localhost:27017")
	if err != nil {
		t.Fatalf("Connect returned unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected non-nil client")
	}
	defer client.Disconnect(context.Background())
}

// TestConnect_WithMalformedURL_ReturnsError はURIパースに失敗する入力で
// エラーが返ることを検証する。
func TestConnect_WithMalformedURL_ReturnsError(t *testing.T) {
	_, err := Connect("://not-a-uri")
	if err == nil {
		t.Fatal("expected error for malformed URI, got nil")
	}
}
