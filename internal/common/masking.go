package common

import (
	"regexp"
	"strings"
)

// MaskPlaceholder replaces sensitive values in log output.
const MaskPlaceholder = "***MASKED***"

// defaultSensitiveKeys are attribute and header names whose values never
// reach log output. Names are matched case-insensitively with "-" and "_"
// treated as equal, so "X-Api-Key" and "api_key" both hit.
var defaultSensitiveKeys = []string{
	"authorization",
	"proxy_authorization",
	"cookie",
	"set_cookie",
	"password",
	"passwd",
	"pwd",
	"secret",
	"client_secret",
	"token",
	"access_token",
	"refresh_token",
	"auth_token",
	"id_token",
	"api_key",
	"apikey",
	"x_api_key",
	"private_key",
}

// maskRule rewrites credentials embedded inside free-form strings.
type maskRule struct {
	re   *regexp.Regexp
	repl string
}

var defaultMaskRules = []maskRule{
	// Authorization header values: Bearer/Basic followed by the credential.
	{
		re:   regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9\-._~+/]+=*`),
		repl: "$1 " + MaskPlaceholder,
	},
	// key=value or "key": "value" credential assignments in bodies,
	// query strings and config snippets.
	{
		re:   regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|client[_-]?secret|token|access[_-]?token|refresh[_-]?token|auth[_-]?token|api[_-]?key|apikey)(["']?\s*[:=]\s*["']?)[^"'&,;\s}\]]+`),
		repl: "${1}${2}" + MaskPlaceholder,
	},
	// Userinfo passwords inside connection URLs (postgres://user:pw@host).
	{
		re:   regexp.MustCompile(`(://[^:/@\s]+:)[^@\s]+@`),
		repl: "${1}" + MaskPlaceholder + "@",
	},
}

// Masker scrubs credentials from log attributes, header maps and
// free-form strings.
type Masker struct {
	keys    map[string]struct{}
	rules   []maskRule
	enabled bool
}

// NewMasker returns a masker with the default key set and rules, enabled.
func NewMasker() *Masker {
	m := &Masker{
		keys:    make(map[string]struct{}, len(defaultSensitiveKeys)),
		rules:   defaultMaskRules,
		enabled: true,
	}
	for _, k := range defaultSensitiveKeys {
		m.keys[k] = struct{}{}
	}
	return m
}

// AddKeys marks additional attribute or header names as sensitive.
func (m *Masker) AddKeys(names ...string) {
	for _, n := range names {
		m.keys[normalizeKey(n)] = struct{}{}
	}
}

// SetEnabled toggles masking.
func (m *Masker) SetEnabled(enabled bool) { m.enabled = enabled }

// IsEnabled reports whether masking is active.
func (m *Masker) IsEnabled() bool { return m.enabled }

// IsSensitiveKey reports whether values under this name are masked whole.
func (m *Masker) IsSensitiveKey(name string) bool {
	_, ok := m.keys[normalizeKey(name)]
	return ok
}

// MaskString rewrites credentials embedded in s.
func (m *Masker) MaskString(s string) string {
	if !m.enabled {
		return s
	}
	for _, r := range m.rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// MaskValue masks value in the context of its attribute or header name:
// a sensitive name masks the whole value, otherwise string values are
// scrubbed with the embedded-credential rules and non-strings pass
// through unchanged.
func (m *Masker) MaskValue(name string, value any) any {
	if !m.enabled {
		return value
	}
	if m.IsSensitiveKey(name) {
		return MaskPlaceholder
	}
	if s, ok := value.(string); ok {
		return m.MaskString(s)
	}
	return value
}

// MaskKeyValuePairs masks values in an alternating key/value argument
// list. Non-string keys and odd trailing arguments pass through.
func (m *Masker) MaskKeyValuePairs(keyvals ...any) []any {
	if !m.enabled || len(keyvals) == 0 {
		return keyvals
	}
	masked := make([]any, len(keyvals))
	copy(masked, keyvals)
	for i := 0; i+1 < len(keyvals); i += 2 {
		if key, ok := keyvals[i].(string); ok {
			masked[i+1] = m.MaskValue(key, keyvals[i+1])
		}
	}
	return masked
}

// MaskHeaders returns a copy of headers with sensitive values masked.
// Used when logging request and response headers.
func (m *Masker) MaskHeaders(headers map[string]string) map[string]string {
	if !m.enabled || len(headers) == 0 {
		return headers
	}
	masked := make(map[string]string, len(headers))
	for k, v := range headers {
		if m.IsSensitiveKey(k) {
			masked[k] = MaskPlaceholder
			continue
		}
		masked[k] = m.MaskString(v)
	}
	return masked
}

func normalizeKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

var globalMasker = NewMasker()

// GetGlobalMasker returns the process-wide masker.
func GetGlobalMasker() *Masker { return globalMasker }

// SetGlobalMasker replaces the process-wide masker.
func SetGlobalMasker(m *Masker) { globalMasker = m }

// MaskSensitiveData scrubs s with the process-wide masker.
func MaskSensitiveData(s string) string { return globalMasker.MaskString(s) }

// EnableMasking toggles the process-wide masker.
func EnableMasking(enabled bool) { globalMasker.SetEnabled(enabled) }

// IsMaskingEnabled reports whether the process-wide masker is active.
func IsMaskingEnabled() bool { return globalMasker.IsEnabled() }
