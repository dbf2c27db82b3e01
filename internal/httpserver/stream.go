package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// streamFile sends the artifact as an attachment download, reading and
// flushing one chunk at a time so multi-megabyte artifacts never sit in
// memory whole. A failed write means the client disconnected; that is logged
// and swallowed, and the caller's deferred teardown still runs.
func (s *Server) streamFile(w http.ResponseWriter, log *zap.Logger, path, contentType string) {
	f, err := os.Open(path) // #nosec G304 -- path is workspace-owned
	if err != nil {
		log.Error("artifact not readable", zap.String("path", path), zap.Error(err))
		http.Error(w, msgRenderFailed, http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, s.chunkSize)

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				log.Info("client disconnected mid-stream", zap.Error(writeErr))
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return
		}
		if readErr != nil {
			log.Error("artifact read failed mid-stream", zap.Error(readErr))
			return
		}
	}
}
