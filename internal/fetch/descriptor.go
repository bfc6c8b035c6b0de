package fetch

import (
	"net/http"

	"github.com/nao1215/iatifetch/internal/hashkey"
)

// BodyType declares how a response body should be decoded.
type BodyType string

// Supported body types.
const (
	BodyText BodyType = "text"
	BodyJSON BodyType = "json"
	BodyXML  BodyType = "xml"
)

// Descriptor is a pure value describing one HTTP request. Two descriptors
// with identical URL, method, and parameter content are the same request:
// they hash to the same cache key regardless of map ordering.
type Descriptor struct {
	// URL is the absolute request URL.
	URL string

	// Method is the HTTP method; empty means GET.
	Method string

	// Params are query parameters merged into the request.
	Params map[string]string

	// BodyType selects response decoding. XML bodies stay raw text; the
	// normalizer consumes them later.
	BodyType BodyType

	// Handle tags the request with the owning organisation's registry
	// handle when one is known. It does not participate in the cache key.
	Handle string
}

// EffectiveMethod returns the request method, defaulting to GET.
func (d Descriptor) EffectiveMethod() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return d.Method
}

// Key returns the canonical cache key for this descriptor.
func (d Descriptor) Key() string {
	var params map[string]any
	if len(d.Params) > 0 {
		params = make(map[string]any, len(d.Params))
		for k, v := range d.Params {
			params[k] = v
		}
	}
	return hashkey.RequestKey(d.URL, d.EffectiveMethod(), params)
}
