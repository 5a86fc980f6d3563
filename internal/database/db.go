// Package database はMongoDBへの接続管理を提供する。
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Connect はMongoDBクライアントを生成する。
// databaseURLはMongoDBの接続URIを指定する（例: "mongodb://localhost:27017"）。
// mongo.Connectは実際の接続を確立しないため、到達確認にはPingを使用すること。
func Connect(databaseURL string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	return client, nil
}

// Ping はデータベースへの到達性を確認する。
func Ping(ctx context.Context, client *mongo.Client) error {
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return nil
}
