//go:build !production

package middleware

// signatureBypassEnabled в сборках без тега production подпись BypassSignature
// принимается без проверки (локальная отладка)
const signatureBypassEnabled = true
