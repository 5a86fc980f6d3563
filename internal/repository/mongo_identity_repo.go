package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/idman/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// collIdentity はアイデンティティを格納するコレクション名。
const collIdentity = "identity"

// MongoIdentityRepo はMongoDBを使用したアイデンティティリポジトリ。
type MongoIdentityRepo struct {
	coll *mongo.Collection
}

// NewMongoIdentityRepo はMongoIdentityRepoを生成する。
func NewMongoIdentityRepo(db *mongo.Database) *MongoIdentityRepo {
	return &MongoIdentityRepo{coll: db.Collection(collIdentity)}
}

// identityDoc はidentityコレクションのBSONドキュメント。
// MongoDB自身の_idは読み書きせず、phoneを業務キーとして文書を特定する。
type identityDoc struct {
	Phone            string    `bson:"phone"`
	Name             string    `bson:"name"`
	Email            string    `bson:"email"`
	Country          *string   `bson:"country"`
	FaithAffirmation bool      `bson:"faith_affirmation"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// toModel はBSONドキュメントをドメインモデルに変換する。
func (d *identityDoc) toModel() *model.Identity {
	return &model.Identity{
		Phone:            d.Phone,
		Name:             d.Name,
		Email:            d.Email,
		Country:          d.Country,
		FaithAffirmation: d.FaithAffirmation,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// FindByPhone は指定電話番号のアイデンティティを取得する。見つからない場合はnilを返す。
func (r *MongoIdentityRepo) FindByPhone(ctx context.Context, phone string) (*model.Identity, error) {
	var doc identityDoc
	err := r.coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	return doc.toModel(), nil
}

// Create はアイデンティティを新規作成する。
func (r *MongoIdentityRepo) Create(ctx context.Context, identity *model.Identity) error {
	doc := identityDoc{
		Phone:            identity.Phone,
		Name:             identity.Name,
		Email:            identity.Email,
		Country:          identity.Country,
		FaithAffirmation: identity.FaithAffirmation,
		CreatedAt:        identity.CreatedAt,
		UpdatedAt:        identity.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}

	return nil
}

// UpdateByPhone は電話番号をキーにプロフィール項目とupdated_atをin-placeで更新する。
// created_atは変更しない。
func (r *MongoIdentityRepo) UpdateByPhone(ctx context.Context, identity *model.Identity) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"phone": identity.Phone},
		bson.M{"$set": bson.M{
			"name":              identity.Name,
			"email":             identity.Email,
			"country":           identity.Country,
			"faith_affirmation": identity.FaithAffirmation,
			"updated_at":        identity.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}

	return nil
}

// compile-time interface check
var _ IdentityRepository = (*MongoIdentityRepo)(nil)
