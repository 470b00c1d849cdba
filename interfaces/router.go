package interfaces

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var timeNow = time.Now

// NewRouter builds the gin engine with recovery, CORS and request logging.
// When staticDir is set, unknown GET paths serve files from it and fall back
// to its index.html.
func NewRouter(logger logrus.FieldLogger, staticDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(RequestLogger(logger))

	router.NoRoute(func(c *gin.Context) {
		if staticDir == "" || c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		path := filepath.Join(staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			c.File(path)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
	return router
}
