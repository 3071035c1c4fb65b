package repository

import (
	"context"
	"sync"
	"time"

	"HomeDesk/entity"
)

// Memory is the in-process repository used when Mongo is disabled and
// in tests. All mutations happen under one mutex, so the conditional
// consume has the same atomicity as the Mongo filter-guarded update.
type Memory struct {
	mu       sync.Mutex
	passes   map[string]*entity.VisitorPass // by pass code
	tickets  []*entity.MaintenanceTicket
	bookings []*entity.AmenityBooking
	bridges  map[string]*entity.DeviceBridge // by resident id
}

func NewMemory() *Memory {
	return &Memory{
		passes:  make(map[string]*entity.VisitorPass),
		bridges: make(map[string]*entity.DeviceBridge),
	}
}

func (m *Memory) InsertPass(ctx context.Context, pass *entity.VisitorPass) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.passes[pass.PassCode]; exists {
		return ErrDuplicateCode
	}
	cp := *pass
	m.passes[pass.PassCode] = &cp
	return nil
}

func (m *Memory) FindPassByCode(ctx context.Context, code string) (*entity.VisitorPass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, ok := m.passes[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pass
	return &cp, nil
}

func (m *Memory) ConsumePass(ctx context.Context, code string, singleUse bool, now time.Time) (*entity.VisitorPass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, ok := m.passes[code]
	if !ok || pass.Status != entity.PassActive {
		return nil, ErrNotConsumable
	}
	if singleUse && pass.UsedCount != 0 {
		return nil, ErrNotConsumable
	}

	pass.UsedCount++
	if singleUse {
		pass.Status = entity.PassUsed
		pass.UsedAt = now
	}
	cp := *pass
	return &cp, nil
}

func (m *Memory) RevokePass(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, ok := m.passes[code]
	if !ok || pass.Status != entity.PassActive {
		return ErrNotFound
	}
	pass.Status = entity.PassRevoked
	return nil
}

func (m *Memory) InsertTicket(ctx context.Context, ticket *entity.MaintenanceTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *ticket
	m.tickets = append(m.tickets, &cp)
	return nil
}

func (m *Memory) TicketsByResident(ctx context.Context, residentId string) ([]entity.MaintenanceTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.MaintenanceTicket
	for _, t := range m.tickets {
		if t.ResidentId == residentId {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *Memory) InsertBooking(ctx context.Context, booking *entity.AmenityBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.Status == entity.BookingConfirmed &&
			b.AmenityId == booking.AmenityId &&
			b.Date == booking.Date &&
			b.SlotId == booking.SlotId {
			return ErrSlotTaken
		}
	}
	cp := *booking
	m.bookings = append(m.bookings, &cp)
	return nil
}

func (m *Memory) BookingsByResident(ctx context.Context, residentId string) ([]entity.AmenityBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.AmenityBooking
	for _, b := range m.bookings {
		if b.ResidentId == residentId && b.Status == entity.BookingConfirmed {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *Memory) UpsertBridge(ctx context.Context, bridge *entity.DeviceBridge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *bridge
	m.bridges[bridge.ResidentId] = &cp
	return nil
}

func (m *Memory) BridgeByResident(ctx context.Context, residentId string) (*entity.DeviceBridge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bridge, ok := m.bridges[residentId]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *bridge
	return &cp, nil
}
