package dto

type CreateActivityRequest struct {
	UserID      int64   `json:"user_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	RefID       string  `json:"ref_id"`
	Criticality string  `json:"criticality"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Week        string  `json:"week"`
	Progress    string  `json:"progress"`
	Effort      float64 `json:"effort"`
}

// UpdateActivityRequest - nil-поле не меняет прежнее значение.
// progress/effort имеют смысл только вместе с week.
type UpdateActivityRequest struct {
	Week        *string  `json:"week,omitempty"`
	Progress    *string  `json:"progress,omitempty"`
	Effort      *float64 `json:"effort,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Criticality *string  `json:"criticality,omitempty"`
	Subject     *string  `json:"subject,omitempty"`
	Description *string  `json:"description,omitempty"`
	RefID       *string  `json:"ref_id,omitempty"`
}

type ListMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type CreateUserRequest struct {
	FullName string `json:"full_name"`
}

type CreateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
