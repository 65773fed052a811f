package archive

import (
	"context"

	"github.com/brightstart/screening-api/internal/models"
)

// DirectArchiver writes records synchronously, bypassing the queue. Used when
// RabbitMQ is unavailable so the service can still archive, at the cost of a
// database write on the request path.
type DirectArchiver struct {
	repo *Repository
}

func NewDirectArchiver(repo *Repository) *DirectArchiver {
	return &DirectArchiver{repo: repo}
}

func (a *DirectArchiver) Record(ctx context.Context, event models.ArchiveEvent) error {
	return a.repo.Insert(ctx, &event)
}
