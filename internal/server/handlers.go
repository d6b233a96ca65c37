package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/layout"
	"github.com/mindweave/mindweave/pkg/mindmap"
	"github.com/mindweave/mindweave/pkg/pipeline"
	"github.com/mindweave/mindweave/pkg/store"
)

// createMapRequest is the body of POST /v1/maps. Either topic (generate) or
// root (caller-provided tree) must be set.
type createMapRequest struct {
	Topic     string         `json:"topic,omitempty"`
	Root      *mindmap.Topic `json:"root,omitempty"`
	Name      string         `json:"name,omitempty"`
	MaxDepth  int            `json:"max_depth,omitempty"`
	MaxBranch int            `json:"max_branch,omitempty"`
	Refresh   bool           `json:"refresh,omitempty"`
}

// mapResponse is the JSON shape of a stored map plus its layout.
type mapResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Root      *mindmap.Topic `json:"root"`
	Layout    *layout.Result `json:"layout,omitempty"`
	TreeHash  string         `json:"tree_hash,omitempty"`
	CacheInfo any            `json:"cache_info,omitempty"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var req createMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "malformed request body"))
		return
	}
	if (req.Topic == "") == (req.Root == nil) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "exactly one of topic or root is required"))
		return
	}

	ctx := r.Context()

	var (
		root *mindmap.Topic
		res  *pipeline.Result
		err  error
	)
	if req.Root != nil {
		if err := mindmap.Validate(req.Root, 0); err != nil {
			writeError(w, err)
			return
		}
		root = req.Root
		lay, err := s.runner.ComputeLayout(ctx, root, pipeline.Options{Logger: s.logger})
		if err != nil {
			writeError(w, err)
			return
		}
		res = &pipeline.Result{Root: root, Layout: lay}
	} else {
		res, err = s.runner.Execute(ctx, pipeline.Options{
			Topic:     req.Topic,
			MaxDepth:  req.MaxDepth,
			MaxBranch: req.MaxBranch,
			Refresh:   req.Refresh,
			Formats:   []string{pipeline.FormatJSON},
			Logger:    s.logger,
			Generator: s.generator,
			APIKey:    s.apiKey,
			BaseURL:   s.baseURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		root = res.Root
	}

	name := req.Name
	if name == "" {
		name = root.Label
	}
	doc := store.NewDocument(name, root)
	if err := s.store.Put(ctx, doc); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapResponse{
		ID:        doc.ID,
		Name:      doc.Name,
		Root:      root,
		Layout:    res.Layout,
		TreeHash:  res.TreeHash,
		CacheInfo: res.CacheInfo,
	})
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	type item struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		UpdatedAt string `json:"updated_at"`
	}
	out := make([]item, 0, len(docs))
	for _, d := range docs {
		out = append(out, item{ID: d.ID, Name: d.Name, UpdatedAt: d.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	lay, err := s.runner.ComputeLayout(r.Context(), doc.Root, pipeline.Options{Logger: s.logger})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapResponse{
		ID:     doc.ID,
		Name:   doc.Name,
		Root:   doc.Root,
		Layout: lay,
	})
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTopic,
		errors.ErrCodeInvalidTree, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}
