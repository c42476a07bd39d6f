package runtime

import "github.com/architeacher/items/pkg/metrics"

var metricDescriptors = metrics.Descriptors{
	"http_requests_total": {
		Description: "Total number of HTTP requests",
		Unit:        "{request}",
	},
	"http_request_duration_seconds": {
		Description: "HTTP request latency",
		Unit:        "s",
	},
	"http_response_size_bytes": {
		Description: "HTTP response body size",
		Unit:        "By",
	},
	"cache_aside.hits": {
		Description: "Reads served from the cache",
		Unit:        "{read}",
	},
	"cache_aside.misses": {
		Description: "Reads that fell through to the primary store",
		Unit:        "{read}",
	},
	"cache_aside.stores": {
		Description: "Values written back to the cache",
		Unit:        "{write}",
	},
	"cache_aside.stale_stores": {
		Description: "Write-backs dropped because an invalidation overtook them",
		Unit:        "{write}",
	},
	"cache_aside.invalidations": {
		Description: "Cache keys invalidated after a write",
		Unit:        "{key}",
	},
}
