package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind тип мутации, записанной в outbox
type EventKind string

const (
	EventCreate EventKind = "CREATE"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
)

// Valid проверяет, что тип события известен
func (k EventKind) Valid() bool {
	switch k {
	case EventCreate, EventUpdate, EventDelete:
		return true
	}
	return false
}

// Content представляет непрозрачный payload внешней схемы с явным тегом варианта.
// Kind называет сущность (например "student"), Payload передается как есть.
type Content struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate проверяет контент события данного типа.
// Тег обязателен для CREATE и UPDATE; DELETE адресуется только record_id и тег может опустить.
func (c Content) Validate(event EventKind) error {
	if c.Kind == "" && event != EventDelete {
		return fmt.Errorf("content kind cannot be empty")
	}
	if len(c.Payload) > 0 && !json.Valid(c.Payload) {
		return fmt.Errorf("content payload is not valid JSON")
	}
	return nil
}

// OutboxEvent представляет одну локальную мутацию, ожидающую отправки в центр.
// LocalID монотонно растет в порядке вставки, Pushed выставляется только после
// успешной загрузки чанка, в который попало событие.
type OutboxEvent struct {
	CreatedAt time.Time `json:"created_at"` // время мутации
	RecordID  string    `json:"record_id"`  // стабильный идентификатор сущности в рамках центра
	Event     EventKind `json:"event"`      // CREATE / UPDATE / DELETE
	Content   Content   `json:"content"`    // payload внешней схемы
	LocalID   uint64    `json:"local_id"`   // локальный порядковый номер
	Pushed    bool      `json:"pushed"`     // подтверждено центром
}
