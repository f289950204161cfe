// Package static provides the embedded chat web UI.
package static

import (
	"embed"
	"net/http"
)

//go:embed index.html style.css app.js
var assetsFS embed.FS

// Handler serves the embedded UI. Assets are baked into the binary at
// compile time, so the server has no runtime file dependencies.
func Handler() http.Handler {
	return http.FileServer(http.FS(assetsFS))
}
