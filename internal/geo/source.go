// Package geo fetches state boundary features and annotates them with case
// totals for choropleth rendering.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
)

// DefaultBoundaryURL is the India state boundary dataset the dashboard maps onto.
const DefaultBoundaryURL = "https://gist.githubusercontent.com/jbrobst/56c13bbbf9d97d187fea01ca62ea5112/raw/e388c4cae20aa53cb5090210a42ebb9b765c0a36/india_states.geojson"

// DefaultNameField is the feature property holding the state name.
const DefaultNameField = "ST_NM"

// ErrBoundaryFetch wraps any failure to obtain the boundary dataset.
var ErrBoundaryFetch = errors.New("boundary fetch failed")

// Source yields the boundary feature collection.
type Source interface {
	Fetch(ctx context.Context) (*geojson.FeatureCollection, error)
}

// NewSource picks an HTTP source for http(s) locations and a file source
// otherwise. timeout <= 0 disables the HTTP client timeout.
func NewSource(location string, timeout time.Duration) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		client := &http.Client{}
		if timeout > 0 {
			client.Timeout = timeout
		}
		return &HTTPSource{URL: location, Client: client}
	}
	return &FileSource{Path: location}
}

// HTTPSource downloads the dataset on every Fetch; nothing is cached.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Fetch downloads and decodes the feature collection.
func (s *HTTPSource) Fetch(ctx context.Context) (*geojson.FeatureCollection, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrBoundaryFetch, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoundaryFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: unexpected status %s: %s", ErrBoundaryFetch, resp.Status, string(b))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrBoundaryFetch, err)
	}
	return decode(data)
}

// FileSource reads the dataset from a local GeoJSON file.
type FileSource struct {
	Path string
}

// Fetch reads and decodes the feature collection.
func (s *FileSource) Fetch(_ context.Context) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBoundaryFetch, err)
	}
	return decode(data)
}

func decode(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode geojson: %w", ErrBoundaryFetch, err)
	}
	return fc, nil
}
