package cache

import "time"

// Keys and TTLs for cached blog reads.
const (
	PublishedPostsKey = "blog:published"
	PublishedPostsTTL = 5 * time.Minute
)
