package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"loadmap/internal/service"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readBodyJSON decodes a JSON body into out. Unknown fields and trailing
// data are rejected.
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.ValidationError{Field: "body", Message: "request body is required"}
		}
		return &service.ValidationError{Field: "body", Message: err.Error()}
	}
	if dec.More() {
		return &service.ValidationError{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}

// subPath returns the path below prefix split on "/", without empty segments.
func subPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func queryInt(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if !q.Has(name) || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: fmt.Sprintf("must be an integer; got %q", s)}
	}
	return v, nil
}

func queryFloat(q url.Values, name string, def float64) (float64, error) {
	s := q.Get(name)
	if !q.Has(name) || s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &service.ValidationError{Field: name, Message: fmt.Sprintf("must be a number; got %q", s)}
	}
	return v, nil
}

func queryBool(q url.Values, name string, def bool) (bool, error) {
	s := q.Get(name)
	if !q.Has(name) || s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &service.ValidationError{Field: name, Message: fmt.Sprintf("must be true or false; got %q", s)}
	}
	return v, nil
}

// queryOptional distinguishes an absent parameter (nil) from an empty one.
func queryOptional(q url.Values, name string) *string {
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}

// parseRoomQuery reads and validates the room listing parameters.
func parseRoomQuery(q url.Values) (service.QueryParams, error) {
	p := service.DefaultQueryParams()
	var err error

	if p.MinConfidence, err = queryFloat(q, "min_confidence", p.MinConfidence); err != nil {
		return p, err
	}
	if p.RequireReview, err = queryBool(q, "require_review", p.RequireReview); err != nil {
		return p, err
	}
	if p.Limit, err = queryInt(q, "limit", p.Limit); err != nil {
		return p, err
	}
	if p.Offset, err = queryInt(q, "offset", p.Offset); err != nil {
		return p, err
	}
	if s := q.Get("sort_by"); s != "" {
		if p.SortBy, err = service.ParseSortBy(s); err != nil {
			return p, err
		}
	}
	if s := q.Get("sort_order"); s != "" {
		if p.SortOrder, err = service.ParseSortOrder(s); err != nil {
			return p, err
		}
	}
	p.Category = queryOptional(q, "category")
	p.Q = queryOptional(q, "q")
	return p, p.Validate()
}
