//go:build !linux

package window

func init() {
	Register("webkitgtk", unavailable("webkitgtk", "is only supported on linux"))
}
