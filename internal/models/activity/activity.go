package activity

import (
	"strings"
	"time"

	"activityTracker/internal/models/week"
)

type Activity struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	ProductID   *int64     `json:"product_id" db:"product_id"`
	Category    string     `json:"category" db:"category"`
	Status      Status     `json:"status" db:"status"`
	RefID       *string    `json:"ref_id,omitempty" db:"ref_id"`
	Criticality string     `json:"criticality" db:"criticality"`
	Subject     string     `json:"subject" db:"subject"`
	Description string     `json:"description" db:"description"`
	WeeklyData  week.Store `json:"weekly_data" db:"weekly_data"`
	Version     int        `json:"version" db:"version"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// заполняются join-ом при листинге
	UserName    string `json:"user_name,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

type Status string

const StatusCompleted Status = "Tamamlandı"
const StatusInProgress Status = "Devam Eden"
const StatusNew Status = "Yeni Konu"

func ValidStatus(s Status) bool {
	switch s {
	case StatusCompleted, StatusInProgress, StatusNew:
		return true
	}
	return false
}

// суффикс категорий, требующих обязательный ref_id
const MandatorySuffix = "(Zorunlu)"

var Categories = []string{
	"Proje ID (Zorunlu)",
	"Talep ID (Zorunlu)",
	"Defect ID (Zorunlu)",
	"Güvenlik Açığı",
	"Diğer",
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// CategoryRequiresRef - инвариант: категория с суффиксом "(Zorunlu)"
// обязана иметь непустой ref_id.
func CategoryRequiresRef(c string) bool {
	return strings.Contains(c, MandatorySuffix)
}
