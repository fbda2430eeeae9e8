package model

import "time"

// Shared defaults used by the server binary and package tests.
const (
	DefaultCacheTTL     = time.Hour
	DefaultFetchTimeout = 30 * time.Second
	DefaultSettleDelay  = 5 * time.Second
	DefaultMaineLinkCap = 10
	DefaultMaineMinURL  = 100
	DefaultTexasRowCap  = 15
)
