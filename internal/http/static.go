package http

import (
	"bytes"
	"compress/gzip"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"

	"swingtube/internal/log"
)

// asset holds a minified and gzipped version of a static file.
type asset struct {
	content     []byte
	gzipped     []byte
	contentType string
}

// assetCache serves a preprocessed copy of an embedded directory. It is
// built once and read-only afterwards.
type assetCache struct {
	m map[string]*asset
}

// newAssetCache minifies and gzips every file under root in fsys.
func newAssetCache(fsys fs.FS, root string, logger *log.Logger) (*assetCache, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	c := &assetCache{m: make(map[string]*asset)}
	err := fs.WalkDir(fsys, root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return err
		}

		contentType := mime.TypeByExtension(filepath.Ext(filePath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		servePath := strings.TrimPrefix(filePath, root+"/")

		minified := data
		mediaType := strings.Split(contentType, ";")[0]
		if _, _, fn := m.Match(mediaType); fn != nil {
			var buf bytes.Buffer
			if err := m.Minify(mediaType, &buf, bytes.NewReader(data)); err != nil {
				logger.Warn("Failed to minify asset, serving original", "asset", servePath, log.FieldError, err.Error())
			} else {
				minified = buf.Bytes()
				logger.Debug("Minified asset", "asset", servePath, "size_before", len(data), "size_after", len(minified))
			}
		}

		a := &asset{content: minified, contentType: contentType}
		if compressible(mediaType) {
			var gzBuf bytes.Buffer
			gz, _ := gzip.NewWriterLevel(&gzBuf, gzip.BestCompression)
			if _, err := gz.Write(minified); err != nil {
				return err
			}
			if err := gz.Close(); err != nil {
				return err
			}
			a.gzipped = gzBuf.Bytes()
		}
		c.m[servePath] = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Static assets initialized", "assets", len(c.m))
	return c, nil
}

// compressible excludes formats that are already compressed.
func compressible(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "image/svg+xml" ||
		mediaType == "application/javascript" ||
		mediaType == "application/json"
}

// Len returns the number of cached assets.
func (c *assetCache) Len() int { return len(c.m) }

// ServeHTTP serves the asset at the request path, which must already have
// the mount prefix stripped.
func (c *assetCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urlPath := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	a, ok := c.m[urlPath]
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Vary", "Accept-Encoding")

	if len(a.gzipped) > 0 && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(a.gzipped)
		return
	}
	_, _ = w.Write(a.content)
}
