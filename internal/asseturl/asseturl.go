// Package asseturl canonicalizes Backblaze B2 asset URLs.
//
// The document store holds clip URLs in whichever form the upload tooling
// happened to produce. Two address families exist:
//
//   - friendly: https://f003.backblazeb2.com/file/<bucket>/<path>
//   - direct:   https://<bucket>.s3.<region>.backblazeb2.com/<path>
//
// The cache keys entries by URL, so both families must collapse to the same
// byte-for-byte string before any lookup or fetch. Normalize is that
// collapse: it rewrites friendly addresses to direct form and re-encodes the
// path with the provider's filename convention (space as "+").
package asseturl

import (
	"net/url"
	"regexp"
	"strings"
)

const providerDomain = "backblazeb2.com"

// friendlyHost matches hosts like f003.backblazeb2.com and captures the
// three-digit region code.
var friendlyHost = regexp.MustCompile(`^f(\d{3})\.` + regexp.QuoteMeta(providerDomain) + `$`)

// regionByCode maps B2 cluster codes to S3-endpoint region names. A code
// missing here leaves the friendly address unrewritten rather than guessing.
var regionByCode = map[string]string{
	"000": "us-west-000",
	"001": "us-west-001",
	"002": "us-west-002",
	"003": "eu-central-003",
	"004": "us-east-004",
	"005": "us-west-005",
}

// Normalize rewrites a raw asset URL into the canonical, fetchable form.
//
// It is a pure function and never fails: empty input yields empty output,
// and input that cannot be parsed as a URL degrades to a best-effort string
// substitution. A degraded URL is preferable to an error in a playback path.
//
// Normalize is idempotent: applying it to its own output is a no-op.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fallbackEscape(raw)
	}

	host := u.Host
	rawPath := u.EscapedPath()

	if m := friendlyHost.FindStringSubmatch(strings.ToLower(host)); m != nil {
		if region, ok := regionByCode[m[1]]; ok {
			if bucket, rest, ok := splitFriendlyPath(rawPath); ok {
				host = bucket + ".s3." + region + "." + providerDomain
				rawPath = rest
			}
		}
		// Unknown region code: keep the friendly host and path untouched
		// apart from re-encoding. Degraded but safe.
	}

	encodedPath := reencodePath(rawPath)

	var b strings.Builder
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteString("://")
	}
	b.WriteString(host)
	b.WriteString(encodedPath)
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteString("#")
		b.WriteString(u.EscapedFragment())
	}
	return b.String()
}

// splitFriendlyPath splits "/file/<bucket>/<path>" into the bucket name and
// the remaining "/<path>". Returns ok=false if the path is not in the
// friendly download layout.
func splitFriendlyPath(rawPath string) (bucket, rest string, ok bool) {
	const prefix = "/file/"
	if !strings.HasPrefix(rawPath, prefix) {
		return "", "", false
	}
	trimmed := rawPath[len(prefix):]
	bucket, rest, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || rest == "" {
		return "", "", false
	}
	return bucket, "/" + rest, true
}

// reencodePath decodes and re-encodes each /-delimited segment of an
// already-escaped path. Decoding first normalizes whatever encoding the
// document store captured; re-encoding uses the provider's filename
// convention, which writes spaces as "+" rather than "%20". "/" stays a
// structural delimiter throughout.
func reencodePath(rawPath string) string {
	if rawPath == "" {
		return ""
	}
	segments := strings.Split(rawPath, "/")
	for i, seg := range segments {
		// QueryUnescape treats "+" as space, so a previously normalized
		// segment decodes back to its original text and re-encodes to the
		// same bytes. That round trip is what makes Normalize idempotent.
		decoded, err := url.QueryUnescape(seg)
		if err != nil {
			// Segment carries a broken escape sequence. Leave it alone;
			// re-encoding would double-escape the "%".
			continue
		}
		segments[i] = url.QueryEscape(decoded)
	}
	return strings.Join(segments, "/")
}

// fallbackEscape is the last resort for input net/url rejects outright.
func fallbackEscape(raw string) string {
	raw = strings.ReplaceAll(raw, "%20", "+")
	return strings.ReplaceAll(raw, " ", "+")
}
