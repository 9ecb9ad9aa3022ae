//go:build !cgo

package window

func init() {
	Register("webview", unavailable("webview", "requires a cgo build"))
}
