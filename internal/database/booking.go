package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"HomeDesk/entity"
)

// InsertBooking commits an amenity booking. The write is an upsert
// keyed on the confirmed (amenity, date, slot) triple with the booking
// in $setOnInsert, so conflict detection and insertion are one atomic
// operation: if a confirmed booking already holds the slot the upsert
// matches it, inserts nothing, and ErrSlotTaken is returned.
func (m *MongoDB) InsertBooking(ctx context.Context, booking *entity.AmenityBooking) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(bookingsCollection)

	filter := bson.D{
		{Key: "amenity_id", Value: booking.AmenityId},
		{Key: "date", Value: booking.Date},
		{Key: "slot_id", Value: booking.SlotId},
		{Key: "status", Value: entity.BookingConfirmed},
	}
	update := bson.D{{Key: "$setOnInsert", Value: booking}}
	opts := options.Update().SetUpsert(true)

	res, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.UpsertedCount == 0 {
		return ErrSlotTaken
	}
	return nil
}

// BookingsByResident returns a resident's confirmed bookings.
func (m *MongoDB) BookingsByResident(ctx context.Context, residentId string) ([]entity.AmenityBooking, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(bookingsCollection)

	filter := bson.D{{Key: "resident_id", Value: residentId}, {Key: "status", Value: entity.BookingConfirmed}}
	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []entity.AmenityBooking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
