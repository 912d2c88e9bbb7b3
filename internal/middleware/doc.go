// Package middleware 提供 gin 中間件：bearer token 驗證、請求 ID、
// 存取日誌與以 Redis 計數的限流。
package middleware
