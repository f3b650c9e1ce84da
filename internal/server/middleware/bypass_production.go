//go:build production

package middleware

// signatureBypassEnabled в production сборке обход проверки подписи отсутствует
const signatureBypassEnabled = false
