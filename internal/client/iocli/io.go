// Package iocli ввод-вывод интерактивных команд клиента
package iocli

//go:generate moq -out io_mock.go . IO

// IO терминал команды: вывод и чтение ответа или секрета
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
