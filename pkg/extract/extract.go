// Package extract turns candidate URLs into raw article text. Extraction is
// best-effort by contract: a URL that cannot be extracted maps to the empty
// string, never to a batch-level error, so one unreachable page cannot sink
// a scan.
package extract

import "context"

// Extractor resolves a batch of URLs to their raw text content. Every
// requested URL is present in the returned map; failures map to "".
type Extractor interface {
	Extract(ctx context.Context, urls []string) (map[string]string, error)
}
