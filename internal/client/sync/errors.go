package sync

import "errors"

// Ошибки синхронизации, различаемые через errors.Is
var (
	// ErrCenterNotFound центр не зарегистрирован в центральном справочнике
	ErrCenterNotFound = errors.New("center not found")

	// ErrSignatureInvalid центр отверг подпись (claim или чанка)
	ErrSignatureInvalid = errors.New("center signature invalid")

	// ErrChunkRejected центр не смог разобрать тело чанка; повтор тех же байт бесполезен
	ErrChunkRejected = errors.New("chunk rejected")

	// ErrUploadFailed центр принял чанк, но не смог применить его
	ErrUploadFailed = errors.New("chunk upload failed")

	// ErrUnexpectedResponse ответ центра не входит в ожидаемый набор статусов
	ErrUnexpectedResponse = errors.New("unexpected response from central api")

	// ErrNotConfigured не задан center_id или приватный ключ
	ErrNotConfigured = errors.New("instance is not configured for sync")

	// ErrAlreadyRunning проход синхронизации уже выполняется
	ErrAlreadyRunning = errors.New("sync pass is already running")
)
