// Package web holds the frontend bundle compiled into packaged builds.
//
// The bundle is the frontend's build output copied flat into web/dist, with
// index.html at its root next to the hashed assets directory:
//
//	web/dist/index.html
//	web/dist/assets/index-<hash>.js
//
// A checkout ships only web/dist/.gitkeep. Without an index.html the binary
// is a development build and the locator falls through to the dev server
// and frontend/dist.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var bundle embed.FS

// DistFS returns the bundle rooted at web/dist.
func DistFS() (fs.FS, error) {
	return fs.Sub(bundle, "dist")
}
