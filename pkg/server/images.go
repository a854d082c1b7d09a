package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/neezs/neezspilot/pkg/api"
)

// serveImage delivers a cached generated asset. Entries expire after the
// cache TTL, so stale links 404.
func (s *Server) serveImage(w http.ResponseWriter, req *http.Request) {
	if s.assets == nil {
		api.FailureResponse(w, http.StatusNotFound, "image not found")
		return
	}
	asset, ok := s.assets.Get(mux.Vars(req)["id"])
	if !ok {
		api.FailureResponse(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", asset.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(asset.Bytes)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Bytes)
}
