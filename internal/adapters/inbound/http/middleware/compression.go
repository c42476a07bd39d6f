package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/architeacher/items/internal/config"
	"github.com/architeacher/items/pkg/logger"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

var compressibleTypes = map[string]struct{}{
	"application/json": {},
	"text/plain":       {},
}

// Compression encodes JSON responses with brotli or gzip, whichever the
// client prefers, brotli winning ties. Responses are buffered so that small
// bodies below MinSize are sent as is.
func Compression(cfg config.Compression, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
			if encoding == "" || matchesAnyPath(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Add("Vary", "Accept-Encoding")

			buffered := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(buffered, r)

			if err := buffered.finish(encoding, cfg); err != nil {
				log.WithContext(r.Context()).Warn().Err(err).Str("encoding", encoding).Msg("failed to compress response")
			}
		})
	}
}

// negotiateEncoding picks the supported encoding with the highest quality.
func negotiateEncoding(header string) string {
	best, bestQuality := "", 0.0

	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))

		if name != encodingBrotli && name != encodingGzip {
			continue
		}

		quality := 1.0
		if value, found := strings.CutPrefix(strings.TrimSpace(params), "q="); found {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}

			quality = parsed
		}

		if quality <= 0 {
			continue
		}

		if quality > bestQuality || (quality == bestQuality && name == encodingBrotli) {
			best, bestQuality = name, quality
		}
	}

	return best
}

type bufferedResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	w.status = code
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedResponseWriter) finish(encoding string, cfg config.Compression) error {
	header := w.Header()

	if w.body.Len() < cfg.MinSize || header.Get("Content-Encoding") != "" || !isCompressible(header.Get("Content-Type")) {
		header.Set("Content-Length", strconv.Itoa(w.body.Len()))
		w.ResponseWriter.WriteHeader(w.status)
		_, err := w.ResponseWriter.Write(w.body.Bytes())

		return err
	}

	var compressed bytes.Buffer

	encoder := newEncoder(&compressed, encoding, cfg.Level)
	if _, err := encoder.Write(w.body.Bytes()); err != nil {
		return err
	}

	if err := encoder.Close(); err != nil {
		return err
	}

	header.Set("Content-Encoding", encoding)
	header.Set("Content-Length", strconv.Itoa(compressed.Len()))
	w.ResponseWriter.WriteHeader(w.status)

	_, err := w.ResponseWriter.Write(compressed.Bytes())

	return err
}

func newEncoder(w io.Writer, encoding string, level int) io.WriteCloser {
	if encoding == encodingBrotli {
		return brotli.NewWriterLevel(w, level)
	}

	encoder, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return gzip.NewWriter(w)
	}

	return encoder
}

func isCompressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	_, ok := compressibleTypes[mediaType]

	return ok
}
