package stats

// Scope - область агрегации дашборда: вся команда или один пользователь.
type Scope struct {
	UserID *int64
}

func Global() Scope {
	return Scope{}
}

func Personal(userID int64) Scope {
	return Scope{UserID: &userID}
}

func (s Scope) Personal() bool {
	return s.UserID != nil
}

type PersonEffort struct {
	FullName string  `json:"full_name"`
	Effort   float64 `json:"effort"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type ProductEffort struct {
	Name   string  `json:"name"`
	Effort float64 `json:"effort"`
}

type HeatmapPoint struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// Dashboard - все агрегаты числовые, строки-числа наружу не отдаём.
type Dashboard struct {
	TotalEffort          float64         `json:"total_effort"`
	EffortByPerson       []PersonEffort  `json:"effort_by_person"`
	StatusDistribution   []StatusCount   `json:"status_distribution"`
	CategoryDistribution []CategoryCount `json:"category_distribution"`
	TopProducts          []ProductEffort `json:"top_products"`
	HeatmapData          []HeatmapPoint  `json:"heatmap_data"`
}

type Overview struct {
	TeamSize        int64  `json:"team_size"`
	TotalActivities int64  `json:"total_activities"`
	SystemMetrics   string `json:"system_metrics"`
}
