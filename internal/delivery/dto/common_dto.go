package dto

// PageRequest carries 1-based pagination parameters from the query string.
type PageRequest struct {
	Page  int `json:"page" validate:"gte=1"`
	Limit int `json:"limit" validate:"gte=1,lte=100"`
}

// Pagination is embedded in list responses.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// NewPagination computes pages as ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}

// ParticipantResponse is the counterpart user shown on appointments and prescriptions.
type ParticipantResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

type TimeSlotInput struct {
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

type FeatureFlags struct {
	PhoneVerification    bool `json:"phone_verification"`
	MockServices         bool `json:"mock_services"`
	EmailAuth            bool `json:"email_auth"`
	DevBanner            bool `json:"dev_banner"`
	AutoApproveDocuments bool `json:"auto_approve_documents"`
}

type RootResponse struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Environment string       `json:"environment"`
	Features    FeatureFlags `json:"features"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}
