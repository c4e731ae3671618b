package week

// Record - запись по одной неделе внутри активности.
type Record struct {
	Progress string  `json:"progress"`
	Effort   float64 `json:"effort"`
}

// RecordPatch - частичное обновление записи: nil-поле не трогает старое значение.
type RecordPatch struct {
	Progress *string
	Effort   *float64
}

// Store - сопоставление недели и записи, хранится в колонке weekly_data (jsonb).
// История накапливается: записи не удаляются, только добавляются или перезаписываются.
type Store map[Key]Record

func (s Store) Get(k Key) (Record, bool) {
	rec, ok := s[k]
	return rec, ok
}

// Upsert возвращает НОВЫЙ Store, исходный не меняется.
// Если недели ещё нет - запись создаётся с пустыми значениями по умолчанию,
// если есть - перезаписываются только переданные поля.
func (s Store) Upsert(k Key, patch RecordPatch) Store {
	next := make(Store, len(s)+1)
	for key, rec := range s {
		next[key] = rec
	}

	rec := next[k] // zero value если недели не было
	if patch.Progress != nil {
		rec.Progress = *patch.Progress
	}
	if patch.Effort != nil {
		rec.Effort = *patch.Effort
	}
	next[k] = rec

	return next
}

// AnyKey - экзистенциальная проверка для фильтра по неделе.
func (s Store) AnyKey(pred func(Key) bool) bool {
	for k := range s {
		if pred(k) {
			return true
		}
	}
	return false
}

// Latest - максимальная неделя внутри одного Store.
func (s Store) Latest() (Key, bool) {
	var max Key
	found := false
	for k := range s {
		if !found || Compare(k, max) > 0 {
			max = k
			found = true
		}
	}
	return max, found
}

// LatestOf - максимальная неделя по всем переданным Store.
// При равенстве максимумов любой из них удовлетворяет контракту.
func LatestOf(stores ...Store) (Key, bool) {
	var max Key
	found := false
	for _, s := range stores {
		k, ok := s.Latest()
		if !ok {
			continue
		}
		if !found || Compare(k, max) > 0 {
			max = k
			found = true
		}
	}
	return max, found
}
