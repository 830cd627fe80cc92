package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store caches finished analysis reports keyed by normalized seed URL so
// repeated requests for the same site do not re-render and re-analyze it.
var Store *gocache.Cache

func Init() {
	Store = gocache.New(15*time.Minute, 5*time.Minute)
}
