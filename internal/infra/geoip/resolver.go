// Package geoip resolves request IPs to ISO country codes using a MaxMind
// GeoIP2 database. The result is only a locale hint for response messages;
// lookup failures never affect request handling.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

var ErrUnavailable = errors.New("geoip: resolver unavailable")

// CountryResolver resolves an IP address to an ISO 3166-1 country code.
type CountryResolver interface {
	CountryCode(ip string) (string, error)
}

// Resolver is a CountryResolver backed by a GeoIP2 database file.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the database at path. An empty path means the feature
// is disabled and both return values are nil.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// CountryCode returns the country code for ip, or "" when the database has
// no country for it.
func (r *Resolver) CountryCode(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Country.IsoCode, nil
}

func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
