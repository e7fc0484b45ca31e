package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants, seeded by the reference data migration.
const (
	RoleIDAdmin   = 1
	RoleIDDoctor  = 2
	RoleIDPatient = 3
)

const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// DefaultRoles lists the roles every installation carries.
func DefaultRoles() []Role {
	return []Role{
		{ID: RoleIDAdmin, RoleName: RoleAdmin, Description: "Platform administrator"},
		{ID: RoleIDDoctor, RoleName: RoleDoctor, Description: "Medical practitioner"},
		{ID: RoleIDPatient, RoleName: RolePatient, Description: "Patient"},
	}
}

func RoleNameByID(id int) string {
	switch id {
	case RoleIDAdmin:
		return RoleAdmin
	case RoleIDDoctor:
		return RoleDoctor
	case RoleIDPatient:
		return RolePatient
	}
	return ""
}
