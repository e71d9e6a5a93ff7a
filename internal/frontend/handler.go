package frontend

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewIndexHandler creates a handler serving the landing page from the
// embedded filesystem
func NewIndexHandler(staticFS fs.FS) gin.HandlerFunc {
	return func(c *gin.Context) {
		indexFile, err := staticFS.Open("index.html")
		if err != nil {
			slog.Error("Failed to open index.html", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		defer indexFile.Close()

		content, err := io.ReadAll(indexFile)
		if err != nil {
			slog.Error("Failed to read index.html", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Data(http.StatusOK, "text/html; charset=utf-8", content)
	}
}
