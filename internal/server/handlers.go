package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphbridge/pkg/ast"
	"github.com/matzehuels/graphbridge/pkg/cache"
	"github.com/matzehuels/graphbridge/pkg/controller"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/graph"
	gbio "github.com/matzehuels/graphbridge/pkg/io"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/node"
	"github.com/matzehuels/graphbridge/pkg/observability"
	"github.com/matzehuels/graphbridge/pkg/render/nodelink"
)

const maxBodySize = 1 << 20

func pathParam(r *http.Request, name string) (string, error) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "bad %s in URL", name)
	}
	return v, nil
}

func (s *Server) model(r *http.Request) (*module.Model, error) {
	path, err := pathParam(r, "module")
	if err != nil {
		return nil, err
	}
	return s.registry.Open(r.Context(), path)
}

func (s *Server) handle(r *http.Request) (controller.Handle, error) {
	m, err := s.model(r)
	if err != nil {
		return controller.Handle{}, err
	}
	raw, err := pathParam(r, "graph")
	if err != nil {
		return controller.Handle{}, err
	}
	id, err := graph.ParseID(raw)
	if err != nil {
		return controller.Handle{}, err
	}
	return controller.NewHandle(m, id)
}

// save writes m to the store after an edit has been committed to the
// model. A failed save leaves the edit live in memory: the client gets the
// storage error and the next successful save of the module persists it.
func (s *Server) save(w http.ResponseWriter, r *http.Request, m *module.Model) bool {
	if err := s.registry.Save(r.Context(), m); err != nil {
		s.logger.Warn("edit kept in memory, save failed", "module", m.Path(), "err", err)
		s.writeError(w, r, err)
		return false
	}
	return true
}

func nodeParam(r *http.Request) (ast.ID, error) {
	id, err := ast.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return ast.ID{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "bad node id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// nodeView renders one node the way exports do.
func nodeView(h controller.Handle, info node.Info) gbio.Node {
	return gbio.FromNodes(h.ID(), []node.Info{info}, h.Module().Read().Metadata).Nodes[0]
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request body")
	}
	return nil
}

// =============================================================================
// Modules
// =============================================================================

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	paths, err := s.registry.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"modules": paths})
}

func (s *Server) getCode(w http.ResponseWriter, r *http.Request) {
	m, err := s.model(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, m.Code())
}

func (s *Server) putCode(w http.ResponseWriter, r *http.Request) {
	path, err := pathParam(r, "module")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body"))
		return
	}
	m, err := s.registry.SetCode(r.Context(), path, string(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"module": m.Path(), "graphs": graphIDs(m)})
}

func graphIDs(m *module.Model) []string {
	ids := graph.List(m.Read().Ast)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	m, err := s.model(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"graphs": graphIDs(m)})
}

// =============================================================================
// Nodes
// =============================================================================

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	infos, err := h.ListNodeInfos()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gbio.FromNodes(h.ID(), infos, h.Module().Read().Metadata))
}

type locationRequest struct {
	Kind string  `json:"kind"`
	ID   *ast.ID `json:"id,omitempty"`
}

func (l *locationRequest) hint() (graph.LocationHint, error) {
	if l == nil {
		return graph.End(), nil
	}
	needID := func() (ast.ID, error) {
		if l.ID == nil {
			return ast.ID{}, errs.New(errs.ErrCodeInvalidInput, "location %q needs an id", l.Kind)
		}
		return *l.ID, nil
	}
	switch l.Kind {
	case "", "end":
		return graph.End(), nil
	case "start":
		return graph.Start(), nil
	case "before":
		id, err := needID()
		return graph.Before(id), err
	case "after":
		id, err := needID()
		return graph.After(id), err
	}
	return graph.LocationHint{}, errs.New(errs.ErrCodeInvalidInput, "unknown location %q", l.Kind)
}

type addNodeRequest struct {
	Expression string           `json:"expression"`
	ID         *ast.ID          `json:"id,omitempty"`
	Position   *module.Position `json:"position,omitempty"`
	Location   *locationRequest `json:"location,omitempty"`
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req addNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	hint, err := req.Location.hint()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := h.AddNode(controller.NewNodeInfo{
		Expression:   req.Expression,
		Position:     req.Position,
		ID:           req.ID,
		LocationHint: hint,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.save(w, r, h.Module()) {
		return
	}
	info, err := n.Info()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("added node", "module", h.Module().Path(), "graph", h.ID(), "node", n.ID(), "hint", hint)
	writeJSON(w, http.StatusCreated, nodeView(h, info))
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := nodeParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := h.NodeInfo(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeView(h, info))
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := nodeParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := h.RemoveNode(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.save(w, r, h.Module()) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setPosition(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := nodeParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var pos module.Position
	if err := decodeBody(r, &pos); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := h.GetNode(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := n.SetPosition(pos); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !s.save(w, r, h.Module()) {
		return
	}
	info, err := n.Info()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodeView(h, info))
}

// =============================================================================
// Export & Rendering
// =============================================================================

func (s *Server) exportGraph(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	infos, err := h.ListNodeInfos()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.ID().String()+".json"))
	gbio.WriteJSON(gbio.FromNodes(h.ID(), infos, h.Module().Read().Metadata), w)
}

func (s *Server) dot(r *http.Request) (string, error) {
	h, err := s.handle(r)
	if err != nil {
		return "", err
	}
	infos, err := h.ListNodeInfos()
	if err != nil {
		return "", err
	}
	detailed := s.detailed || r.URL.Query().Get("detailed") == "true"
	return nodelink.ToDOT(infos, nodelink.Options{Detailed: detailed}), nil
}

func (s *Server) renderDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	io.WriteString(w, dot)
}

func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := cache.RenderKey("svg", []byte(dot))
	svg, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("render cache read failed", "err", err)
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, "render")
		w.Header().Set("X-Cache", "hit")
	} else {
		observability.Cache().OnCacheMiss(ctx, "render")
		start := time.Now()
		svg, err = nodelink.RenderSVG(ctx, dot)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.logger.Debug("rendered svg", "bytes", len(svg), "took", time.Since(start))
		if err := s.cache.Set(ctx, key, svg, s.ttl); err != nil {
			s.logger.Warn("render cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "render", len(svg))
		}
		w.Header().Set("X-Cache", "miss")
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}
