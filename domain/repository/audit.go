package repository

import (
	"context"

	"social-scheduler/domain/model"
)

// IDispatchAudit is an append-only log of publish attempts.
type IDispatchAudit interface {
	Record(ctx context.Context, audit *model.DispatchAudit) error
}
