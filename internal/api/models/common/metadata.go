package common

import (
	"time"

	"github.com/kalyan021004/todoboard/internal/domain/metadata"
)

type Metadata struct {
	CreatedAt  time.Time `json:"createdAt" swaggertype:"string" format:"date-time"`
	ModifiedAt time.Time `json:"modifiedAt" swaggertype:"string" format:"date-time"`
	Version    uint64    `json:"version" example:"3"`
}

func FromDomainMetadata(m *metadata.Metadata) Metadata {
	return Metadata{
		CreatedAt:  time.Time(m.CreatedAt),
		ModifiedAt: time.Time(m.ModifiedAt),
		Version:    uint64(m.Version),
	}
}
