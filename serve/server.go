// Package serve publishes directory over HTTP composing pages on the fly, so
// result of include processing could be inspected in a real browser.
package serve

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docfrag/compose"
	"docfrag/fetch"
)

const indexPage = "index.html"

// Server composes pages found under root directory.
type Server struct {
	root     string
	composer *compose.Composer
	log      *zap.Logger
	router   *gin.Engine
}

func NewServer(root string, composer *compose.Composer, log *zap.Logger) *Server {
	s := &Server{
		root:     root,
		composer: composer,
		log:      log,
		router:   gin.New(),
	}
	s.router.Use(gin.Recovery(), s.logRequests())
	s.router.GET("/*path", s.handlePath)
	s.router.HEAD("/*path", s.handlePath)
	return s
}

// Handler returns http.Handler serving root.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("Request served",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) handlePath(c *gin.Context) {
	name, ok := s.localPath(c.Param("path"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}

	fi, err := os.Stat(name)
	if err == nil && fi.IsDir() {
		name = filepath.Join(name, indexPage)
		fi, err = os.Stat(name)
	}
	if err != nil || !fi.Mode().IsRegular() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if !isPage(name) {
		c.File(name)
		return
	}
	s.servePage(c, name)
}

func (s *Server) servePage(c *gin.Context, name string) {
	f, err := os.Open(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	base, err := fetch.FileURL(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	opts := s.composer.DefaultOptions()
	opts.Print = queryBool(c, "print")
	if c.Query("unwrap") != "" {
		opts.Unwrap = queryBool(c, "unwrap")
	}
	for _, v := range c.QueryArray("scroll") {
		y, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad scroll position " + strconv.Quote(v)})
			return
		}
		opts.Scrolls = append(opts.Scrolls, y)
	}

	doc, stats, err := s.composer.Compose(c.Request.Context(), f, base, opts)
	if err != nil {
		s.log.Error("Unable to compose page", zap.String("file", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Fragments-Loaded", strconv.Itoa(stats.Loaded))
	c.Header("X-Fragments-Reverted", strconv.Itoa(stats.Reverted))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.String()))
}

// localPath maps request path to file under root, refusing anything which
// would escape it.
func (s *Server) localPath(p string) (string, bool) {
	if strings.Contains(p, "\x00") || strings.Contains(p, `\`) {
		return "", false
	}
	clean := path.Clean("/" + p)
	return filepath.Join(s.root, filepath.FromSlash(clean)), true
}

func isPage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func queryBool(c *gin.Context, key string) bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return false
	}
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
