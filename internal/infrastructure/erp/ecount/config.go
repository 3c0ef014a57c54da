package ecount

import (
	"errors"
	"time"
)

// Config holds the per-tenant ECount OpenAPI credentials. A tenant
// registers these through its ERP connection settings; the adapter
// refuses to send for tenants without one.
type Config struct {
	ComCode       string // ECount company code
	UserID        string // OpenAPI user id
	APICertKey    string // OpenAPI certificate key
	WarehouseCode string // default WH_CD when a line carries none
}

// Validate checks that the credentials are complete
func (c *Config) Validate() error {
	if c.ComCode == "" {
		return errors.New("ecount: company code is required")
	}
	if c.UserID == "" {
		return errors.New("ecount: user id is required")
	}
	if c.APICertKey == "" {
		return errors.New("ecount: API certificate key is required")
	}
	return nil
}

// Options holds the endpoint settings shared by all tenants
type Options struct {
	ZoneURL       string        // zone lookup endpoint
	APIBaseFormat string        // format string taking the zone, or a fixed base URL
	Timeout       time.Duration // per-request timeout
}

// DefaultOptions returns the production ECount endpoints
func DefaultOptions() Options {
	return Options{
		ZoneURL:       "https://oapi.ecount.com/OAPI/V2/Zone",
		APIBaseFormat: "https://oapi%s.ecount.com",
		Timeout:       30 * time.Second,
	}
}
