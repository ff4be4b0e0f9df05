// Package tenant maps inbound requests to the school they belong to.
package tenant

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// slugPattern accepts lowercase alphanumeric labels, optionally
// hyphen-separated, with no leading or trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidSlug reports whether s is an acceptable tenant slug.
func ValidSlug(s string) bool {
	return len(s) <= 64 && slugPattern.MatchString(s)
}

// Lookup loads tenants eligible for resolution. Implementations must only
// return tenants whose status is active or trial; anything else behaves as
// not found so callers cannot distinguish inactive from nonexistent.
type Lookup interface {
	FindResolvableByID(ctx context.Context, id uint) (models.Tenant, error)
	FindResolvableBySlug(ctx context.Context, slug string) (models.Tenant, error)
}

// Resolver derives the tenant for a request from an explicit header or the
// request host's subdomain.
type Resolver struct {
	lookup     Lookup
	baseDomain string
}

// NewResolver constructs a resolver bound to the deployment base domain.
func NewResolver(lookup Lookup, baseDomain string) *Resolver {
	return &Resolver{
		lookup:     lookup,
		baseDomain: strings.ToLower(strings.TrimSpace(baseDomain)),
	}
}

// Resolve returns the tenant for the given header value and host, or nil
// when no tenant resolves. Only infrastructure failures surface as errors.
func (r *Resolver) Resolve(ctx context.Context, headerValue, host string) (*models.Tenant, error) {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue != "" {
		return r.resolveHeader(ctx, headerValue)
	}

	slug := CandidateFromHost(host, r.baseDomain)
	if slug == "" {
		return nil, nil
	}

	return r.lookupSlug(ctx, slug)
}

func (r *Resolver) resolveHeader(ctx context.Context, value string) (*models.Tenant, error) {
	if isAllDigits(value) {
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, nil
		}

		found, err := r.lookup.FindResolvableByID(ctx, uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &found, nil
	}

	return r.lookupSlug(ctx, strings.ToLower(value))
}

func (r *Resolver) lookupSlug(ctx context.Context, slug string) (*models.Tenant, error) {
	if !slugPattern.MatchString(slug) {
		return nil, nil
	}

	found, err := r.lookup.FindResolvableBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &found, nil
}

// CandidateFromHost derives the subdomain slug candidate from a request
// host. It returns "" when the host carries no usable subdomain: the host
// equals the base domain, the base domain is localhost, or the host is not
// under the base domain at all.
func CandidateFromHost(host, baseDomain string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	if baseDomain == "" || baseDomain == "localhost" || host == baseDomain {
		return ""
	}

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	prefix := strings.TrimSuffix(host, suffix)
	labels := strings.Split(prefix, ".")
	candidate := labels[0]
	if !slugPattern.MatchString(candidate) {
		return ""
	}

	return candidate
}

func isAllDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
