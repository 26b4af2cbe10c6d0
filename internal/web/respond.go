package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"fragportal/internal/stats"
	"fragportal/internal/store"
)

const maxBodySize = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeStoreError maps store failures onto status codes. Unknown errors are
// logged and hidden from the client.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.WithError(err).WithField("path", r.URL.Path).Error("store failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeInputError answers validation problems with 400. Anything else is a
// store failure.
func (s *Server) writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	var bad inputError
	if errors.As(err, &bad) {
		writeError(w, http.StatusBadRequest, bad.msg)
		return
	}
	s.writeStoreError(w, r, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pageParams reads page and page_size. Missing values fall back to the
// first page and the configured size; page_size is capped.
func (s *Server) pageParams(r *http.Request) (int, int, error) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := intParam(r, "page_size", s.opts.PageSize)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		return 0, 0, errors.New("page must be at least 1")
	}
	if size < 1 {
		return 0, 0, errors.New("page_size must be at least 1")
	}
	return page, min(size, maxPageSize), nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func writePage[T any](s *Server, w http.ResponseWriter, r *http.Request, items []T) {
	page, size, err := s.pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.NewPage(items, page, size))
}

// sortParams reads sort and dir. An absent sort keeps the natural order.
func sortParams(r *http.Request) (stats.SortState, error) {
	q := r.URL.Query()
	dir, err := stats.ParseDirection(q.Get("dir"))
	if err != nil {
		return stats.SortState{}, err
	}
	if q.Get("sort") == "" {
		return stats.SortState{Direction: dir}, nil
	}
	key, err := stats.ParseSortKey(q.Get("sort"))
	if err != nil {
		return stats.SortState{}, err
	}
	return stats.SortState{Key: key, Direction: dir}, nil
}
