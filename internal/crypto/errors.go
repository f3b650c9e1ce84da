package crypto

import "errors"

var (
	// ErrInvalidKey ключ не удалось декодировать или распарсить
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidSignature подпись не прошла проверку
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnexpectedAlgorithm подпись сделана не ожидаемым алгоритмом
	ErrUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

	// ErrWrongPassphrase не удалось открыть запечатанный ключ
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key")
)
