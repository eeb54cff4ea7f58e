package models

import "encoding/json"

// Patch различает три состояния поля в частичном обновлении:
// поле отсутствует в JSON, поле равно null, поле задано значением.
// Обычный *string этого различия не даёт.
type Patch[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Set = true
	if string(data) == "null" {
		p.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &p.Value); err != nil {
		return err
	}
	p.Valid = true
	return nil
}

// PatchValue задаёт поле значением (для конструирования в коде и тестах).
func PatchValue[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Valid: true, Value: v}
}

// PatchNull явно обнуляет поле.
func PatchNull[T any]() Patch[T] {
	return Patch[T]{Set: true}
}
