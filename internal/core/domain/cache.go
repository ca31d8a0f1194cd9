package domain

// CatalogCacheStats summarizes the in-memory site-listing cache.
type CatalogCacheStats struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	ExpiredEntries int `json:"expired_entries"`
	TTLSeconds     int `json:"ttl_seconds"`
}
