// Package api 組裝 HTTP 路由。
//
// 實際的請求處理在 handlers 子套件，它們把請求轉成服務層呼叫，
// 再把結果或錯誤轉回 JSON 回應。
package api
