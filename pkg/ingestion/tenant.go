package ingestion

import (
	"encoding/json"
	"regexp"
	"strings"
)

// UnknownTenant is the tenant used when no host can be pulled out of a
// record's message.
const UnknownTenant = "unknown"

// DefaultContainerName is the terminal fallback when name derivation
// collapses below the storage minimum of 3 characters.
const DefaultContainerName = "logs-unknown"

// Upstreams write a dedicated line such as "Host: example.com" or
// "host = example.com:443" into the console output.
var hostPattern = regexp.MustCompile(`(?i)\bhost\b\s*[:=]\s*"?([^"\s,;]+)`)

// Container naming constraints are strict: lower case letters, numbers
// and hyphens only, 3-63 characters.
var (
	nonAllowed  = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// Proxies are not consistent about header casing, so the variants are
// tried explicitly.
var forwardedHostKeys = []string{"X-Forwarded-Host", "x-forwarded-host", "X-FORWARDED-HOST"}

// ExtractFQDN derives the originating tenant host from a record's message.
//
// An X-Forwarded-Host header inside JSON embedded in the message wins over
// a plain "Host:" text token; when neither is found the tenant is
// UnknownTenant.
func ExtractFQDN(message string) string {
	if host, ok := forwardedHost(message); ok {
		return host
	}

	match := hostPattern.FindStringSubmatch(message)
	if match == nil {
		return UnknownTenant
	}

	host := stripPort(strings.ToLower(strings.TrimSpace(match[1])))
	if host == "" {
		return UnknownTenant
	}
	return host
}

// forwardedHost attempts to parse JSON embedded in the message (from the
// first "{" onwards) and pull X-Forwarded-Host out of a "headers" mapping.
// Parsing is best-effort: any failure falls back to the text scan.
func forwardedHost(message string) (string, bool) {
	start := strings.Index(message, "{")
	if start == -1 {
		return "", false
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(message[start:]), &parsed); err != nil {
		return "", false
	}

	headers, ok := parsed["headers"].(map[string]interface{})
	if !ok {
		return "", false
	}

	for _, key := range forwardedHostKeys {
		value, ok := headers[key].(string)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		host := stripPort(strings.ToLower(strings.TrimSpace(value)))
		if host == "" {
			return UnknownTenant, true
		}
		return host, true
	}
	return "", false
}

func stripPort(host string) string {
	if index := strings.Index(host, ":"); index != -1 {
		return host[:index]
	}
	return host
}

// ContainerNameFor converts a tenant FQDN into a valid container name.
// Example: example.com with prefix "logs-" becomes logs-example-com.
//
// The prefix is reduced to a token and joined to the base with a single
// hyphen, so "logs" and "logs-" name identically. The function is
// idempotent for any prefix: a name it has already produced is returned
// unchanged instead of being prefixed again.
func ContainerNameFor(prefix, fqdn string) string {
	prefixToken := applyNameRules(strings.ToLower(prefix))
	if isDerivedName(prefixToken, fqdn) {
		return fqdn
	}

	base := applyNameRules(strings.ReplaceAll(strings.ToLower(fqdn), ".", "-"))
	if len(base) < 3 {
		if base == "" {
			base = "unknown"
		} else {
			base = "unk-" + base
		}
	}

	name := base
	if prefixToken != "" {
		name = prefixToken + "-" + base
	}
	if len(name) > 63 {
		name = strings.TrimRight(name[:63], "-")
	}
	if len(name) < 3 {
		name = DefaultContainerName
	}
	return name
}

// isDerivedName reports whether the input already is a name this package
// produced: fully normalized, within length bounds and carrying the
// configured prefix (or equal to the terminal fallback).
func isDerivedName(prefixToken, name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if name != applyNameRules(name) {
		return false
	}
	if name == DefaultContainerName {
		return true
	}
	if prefixToken == "" {
		return true
	}
	return strings.HasPrefix(name, prefixToken+"-")
}

// applyNameRules reduces a string to the allowed container-name alphabet:
// runs of disallowed characters become single hyphens, repeated hyphens
// collapse and leading/trailing hyphens are trimmed.
func applyNameRules(value string) string {
	value = nonAllowed.ReplaceAllString(strings.ToLower(value), "-")
	value = strings.Trim(value, "-")
	return multiHyphen.ReplaceAllString(value, "-")
}

// TenantResolver maps tenants to container names, honouring operator
// overrides before falling back to derivation.
type TenantResolver struct {
	prefix    string
	overrides *TenantOverrides
}

func NewTenantResolver(prefix string, overrides *TenantOverrides) *TenantResolver {
	return &TenantResolver{
		prefix:    prefix,
		overrides: overrides,
	}
}

// ContainerFor returns the destination container name for a tenant.
// Override values pass through the same normalization as derived names so
// the 3-63 character, [a-z0-9-] invariant always holds.
func (r *TenantResolver) ContainerFor(fqdn string) string {
	if r.overrides != nil {
		if name, ok := r.overrides.Lookup(fqdn); ok {
			normalized := applyNameRules(name)
			if len(normalized) > 63 {
				normalized = strings.TrimRight(normalized[:63], "-")
			}
			if len(normalized) >= 3 {
				return normalized
			}
			return DefaultContainerName
		}
	}
	return ContainerNameFor(r.prefix, fqdn)
}
