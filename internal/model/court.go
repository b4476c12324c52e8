package model

// Court площадка, на которой проходят тренировки
type Court struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	PassportRequired bool   `json:"passport_required"` // нужен паспорт для прохода
	IsActive         bool   `json:"is_active"`
}
