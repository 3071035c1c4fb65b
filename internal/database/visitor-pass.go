package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"HomeDesk/entity"
)

// InsertPass stores a freshly issued pass. The pass_code unique index
// turns a code collision into ErrDuplicateCode so the issuer can
// regenerate.
func (m *MongoDB) InsertPass(ctx context.Context, pass *entity.VisitorPass) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(passesCollection)

	_, _ = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pass_code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	_, err = collection.InsertOne(ctx, pass)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCode
	}
	return err
}

// FindPassByCode looks up a pass by its normalized code.
func (m *MongoDB) FindPassByCode(ctx context.Context, code string) (*entity.VisitorPass, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(passesCollection)

	var pass entity.VisitorPass
	err = collection.FindOne(ctx, bson.D{{Key: "pass_code", Value: code}}).Decode(&pass)
	if err != nil {
		return nil, m.findError(err)
	}
	return &pass, nil
}

// ConsumePass performs the check-in consumption as a single atomic
// conditional update. The filter pins status=active and, for single-use
// passes, used_count=0, so two concurrent check-ins can never both
// match; the loser gets ErrNotConsumable.
func (m *MongoDB) ConsumePass(ctx context.Context, code string, singleUse bool, now time.Time) (*entity.VisitorPass, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(passesCollection)

	filter := bson.D{
		{Key: "pass_code", Value: code},
		{Key: "status", Value: entity.PassActive},
	}
	if singleUse {
		filter = append(filter, bson.E{Key: "used_count", Value: 0})
	}

	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "used_count", Value: 1}}}}
	if singleUse {
		update = append(update, bson.E{Key: "$set", Value: bson.D{
			{Key: "status", Value: entity.PassUsed},
			{Key: "used_at", Value: now},
		}})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pass entity.VisitorPass
	err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&pass)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotConsumable
		}
		return nil, err
	}
	return &pass, nil
}

// RevokePass marks an active pass revoked.
func (m *MongoDB) RevokePass(ctx context.Context, code string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(passesCollection)

	filter := bson.D{{Key: "pass_code", Value: code}, {Key: "status", Value: entity.PassActive}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: entity.PassRevoked}}}}

	res, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
