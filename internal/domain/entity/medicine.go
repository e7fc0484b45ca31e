package entity

// Medicine is a reference catalog entry used for prescription autocomplete.
type Medicine struct {
	ID          int      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string   `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	NameAr      string   `gorm:"type:varchar(150);index" json:"name_ar"`
	DosageForms []string `gorm:"type:jsonb;serializer:json" json:"dosage_forms"`
	Category    string   `gorm:"type:varchar(100);index" json:"category"`
	Description string   `gorm:"type:text" json:"description,omitempty"`
}

func (Medicine) TableName() string {
	return "medicines"
}
