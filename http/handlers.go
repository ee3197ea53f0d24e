package http

import (
	"net/http"
	"strings"

	"github.com/fwojciec/docqa"
	"github.com/go-chi/chi/v5"
)

type docsEntry struct {
	Name      string            `json:"name"`
	PageCount int               `json:"page_count"`
	State     docqa.CorpusState `json:"state"`
}

type docsListResponse struct {
	Docs []docsEntry `json:"docs"`
}

type processRequest struct {
	DocsName string `json:"docs_name"`
}

type queryRequest struct {
	DocsName string `json:"docs_name"`
	Question string `json:"question"`
}

type queryResponse struct {
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	ChainOfThought string         `json:"chain_of_thought"`
	DocsName       string         `json:"docs_name"`
	Sources        []docqa.Source `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.corpora.ListCorpora(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	resp := docsListResponse{Docs: make([]docsEntry, 0, len(summaries))}
	for _, c := range summaries {
		resp.Docs = append(resp.Docs, docsEntry{Name: c.Name, PageCount: c.PageCount, State: c.State})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDocs(w http.ResponseWriter, r *http.Request) {
	corpus, err := s.corpora.FindCorpus(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, corpus)
}

func (s *Server) handleDeleteDocs(w http.ResponseWriter, r *http.Request) {
	if err := s.corpora.DeleteCorpus(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	corpus, err := s.corpora.Process(r.Context(), req.DocsName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, corpus)
}

// handleQuery processes the corpus before answering, so a query against a
// new or changed directory sees its current pages.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, r, docqa.Errorf(docqa.EINVALID, "question required"))
		return
	}

	if _, err := s.corpora.Process(r.Context(), req.DocsName); err != nil {
		s.respondError(w, r, err)
		return
	}
	result, err := s.corpora.Query(r.Context(), req.DocsName, req.Question)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []docqa.Source{}
	}
	s.respondJSON(w, http.StatusOK, queryResponse{
		Question:       result.Question,
		Answer:         result.Answer,
		ChainOfThought: result.Reasoning,
		DocsName:       result.CorpusName,
		Sources:        sources,
	})
}
