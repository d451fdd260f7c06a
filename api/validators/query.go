package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/libraria-backend/pkg/errors"
)

// ParsePathID extracts a positive integer id from a chi route parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive integer")
	}
	return value, nil
}

// ParseIDList splits a comma-separated id list query parameter.
func ParseIDList(r *http.Request, key string) ([]int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || value <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a comma-separated list of positive integers")
		}
		ids = append(ids, value)
	}
	return ids, nil
}
