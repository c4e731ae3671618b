package activity

type SortKey string

const (
	SortUpdatedAt   SortKey = "updated_at"
	SortUserName    SortKey = "user_name"
	SortProductName SortKey = "product_name"
	SortCategory    SortKey = "category"
	SortStatus      SortKey = "status"
	SortSubject     SortKey = "subject"
	SortCriticality SortKey = "criticality"
	SortEffort      SortKey = "effort"
)

var validSortKeys = map[SortKey]bool{
	SortUpdatedAt:   true,
	SortUserName:    true,
	SortProductName: true,
	SortCategory:    true,
	SortStatus:      true,
	SortSubject:     true,
	SortCriticality: true,
	SortEffort:      true,
}

func ValidSortKey(k SortKey) bool {
	return validSortKeys[k]
}

type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// ListQuery - параметры листинга активностей.
// Week - частичное совпадение с любым ключом weekly_data,
// UserID и ProductID - точные совпадения.
type ListQuery struct {
	UserID    *int64
	ProductID *int64
	Week      string
	Sort      SortKey
	Order     Order
	Page      int
	Limit     int
}
