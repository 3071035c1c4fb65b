package passes

import (
	"context"

	"HomeDesk/entity"
)

type Core interface {
	CheckIn(ctx context.Context, code string) (*entity.VisitorPass, error)
	Lookup(ctx context.Context, code string) (*entity.VisitorPass, error)
}

// Broadcaster pushes successful check-ins to the front-desk dashboard.
type Broadcaster interface {
	BroadcastCheckIn(pass *entity.VisitorPass)
}
