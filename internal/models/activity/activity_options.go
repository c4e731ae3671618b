package activity

// Option - функция частичного обновления активности.
// Белый список полей, доступных для патча: статус, категория, критичность,
// тема, описание и ref_id. Остальные поля меняются только своими операциями.
type Option func(*Activity)

func WithStatus(status Status) Option {
	return func(a *Activity) {
		a.Status = status
	}
}

func WithCategory(category string) Option {
	return func(a *Activity) {
		a.Category = category
	}
}

func WithCriticality(criticality string) Option {
	return func(a *Activity) {
		a.Criticality = criticality
	}
}

func WithSubject(subject string) Option {
	return func(a *Activity) {
		a.Subject = subject
	}
}

func WithDescription(description string) Option {
	return func(a *Activity) {
		a.Description = description
	}
}

func WithRefID(refID string) Option {
	return func(a *Activity) {
		a.RefID = &refID
	}
}
