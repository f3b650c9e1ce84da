package tenant

import "errors"

var (
	// ErrUnknownEvent тип события не CREATE/UPDATE/DELETE; обработка чанка прерывается
	ErrUnknownEvent = errors.New("unknown event")

	// ErrRecordNotFound DELETE отсутствующей записи при строгой политике
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidEvent событие не проходит валидацию (например, пустой record_id)
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidCenterID из идентификатора центра нельзя построить namespace
	ErrInvalidCenterID = errors.New("invalid center id")

	// ErrRouterClosed роутер закрыт
	ErrRouterClosed = errors.New("tenant router is closed")
)
