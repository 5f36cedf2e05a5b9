package web

import (
	"os"

	ginslog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"
)

// StaticPath is where files from the static directory are served.
const StaticPath = "/static"

// NewRouter builds the gin engine: recovery, request IDs, access logging,
// session resolution, optional static files, and the handler's routes.
// staticDir is skipped when empty or not a directory.
func NewRouter(h *Handler, staticDir string) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		ginslog.SetLogger(),
		h.sessions.Middleware(),
	)
	router.SetHTMLTemplate(Templates())

	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			router.Static(StaticPath, staticDir)
		}
	}

	h.Register(router)
	return router
}
