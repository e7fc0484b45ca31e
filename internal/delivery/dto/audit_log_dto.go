package dto

import (
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64                `json:"id"`
	User      *ParticipantResponse `json:"user,omitempty"`
	Action    string               `json:"action"`
	Metadata  entity.JSON          `json:"metadata"`
	CreatedAt time.Time            `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs []AuditLogResponse `json:"logs"`
	Pagination
}
