package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"HomeDesk/entity"
)

// InsertTicket stores a committed maintenance ticket.
func (m *MongoDB) InsertTicket(ctx context.Context, ticket *entity.MaintenanceTicket) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ticketsCollection)

	_, err = collection.InsertOne(ctx, ticket)
	return err
}

// TicketsByResident returns a resident's tickets, newest first.
func (m *MongoDB) TicketsByResident(ctx context.Context, residentId string) ([]entity.MaintenanceTicket, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(ticketsCollection)

	cursor, err := collection.Find(ctx, bson.D{{Key: "resident_id", Value: residentId}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []entity.MaintenanceTicket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
