package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/idman/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// collOtpSession はOTPセッションを格納するコレクション名。
const collOtpSession = "otpsession"

// MongoOtpSessionRepo はMongoDBを使用したOTPセッションリポジトリ。
type MongoOtpSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoOtpSessionRepo はMongoOtpSessionRepoを生成する。
func NewMongoOtpSessionRepo(db *mongo.Database) *MongoOtpSessionRepo {
	return &MongoOtpSessionRepo{coll: db.Collection(collOtpSession)}
}

// otpSessionDoc はotpsessionコレクションのBSONドキュメント。
// MongoDB自身の_idは使用せず、サービスが発行するsession_idで文書を特定する。
// updated_atは検証が完了するまでドキュメントに現れない。
type otpSessionDoc struct {
	SessionID string    `bson:"session_id"`
	Phone     string    `bson:"phone"`
	Code      string    `bson:"code"`
	Verified  bool      `bson:"verified"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at,omitempty"`
}

// toModel はBSONドキュメントをドメインモデルに変換する。
func (d *otpSessionDoc) toModel() *model.OtpSession {
	return &model.OtpSession{
		ID:        d.SessionID,
		Phone:     d.Phone,
		Code:      d.Code,
		Verified:  d.Verified,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Create は新しいOTPセッションを挿入する。常にinsertであり、既存レコードは変更しない。
func (r *MongoOtpSessionRepo) Create(ctx context.Context, session *model.OtpSession) error {
	doc := otpSessionDoc{
		SessionID: session.ID,
		Phone:     session.Phone,
		Code:      session.Code,
		Verified:  session.Verified,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		UpdatedAt: session.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert otp session: %w", err)
	}

	return nil
}

// FindLatestByPhone は指定電話番号のcreated_atが最新のセッションを1件取得する。
// 見つからない場合はnilを返す。
func (r *MongoOtpSessionRepo) FindLatestByPhone(ctx context.Context, phone string) (*model.OtpSession, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc otpSessionDoc
	err := r.coll.FindOne(ctx, bson.M{"phone": phone}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find otp session: %w", err)
	}

	return doc.toModel(), nil
}

// MarkVerified は指定セッションIDのセッションをverified=trueに更新する。
func (r *MongoOtpSessionRepo) MarkVerified(ctx context.Context, sessionID string, verifiedAt time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"verified": true, "updated_at": verifiedAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark otp session verified: %w", err)
	}

	return nil
}

// compile-time interface check
var _ OtpSessionRepository = (*MongoOtpSessionRepo)(nil)
