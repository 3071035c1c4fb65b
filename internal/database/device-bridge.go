package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"HomeDesk/entity"
)

// UpsertBridge stores a resident's bridge configuration, replacing any
// previous one (a resident has at most one configured bridge).
func (m *MongoDB) UpsertBridge(ctx context.Context, bridge *entity.DeviceBridge) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(bridgesCollection)

	bridge.CreatedAt = time.Now()

	filter := bson.D{{Key: "resident_id", Value: bridge.ResidentId}}
	update := bson.D{{Key: "$set", Value: bridge}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// BridgeByResident returns the resident's configured bridge.
func (m *MongoDB) BridgeByResident(ctx context.Context, residentId string) (*entity.DeviceBridge, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(bridgesCollection)

	var bridge entity.DeviceBridge
	err = collection.FindOne(ctx, bson.D{{Key: "resident_id", Value: residentId}}).Decode(&bridge)
	if err != nil {
		return nil, m.findError(err)
	}
	return &bridge, nil
}
