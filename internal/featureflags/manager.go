// Package featureflags evaluates the runtime switches that gate optional API surface.
package featureflags

import (
	"hash/fnv"
	"maps"
	"strconv"
	"strings"
)

// Flags understood by the API.
const (
	// ProfileEdit exposes PATCH /api/users/me.
	ProfileEdit = "profile_edit"
	// ReadReceipts exposes marking a conversation read.
	ReadReceipts = "read_receipts"
)

// Known lists every flag the API checks.
var Known = []string{ProfileEdit, ReadReceipts}

// rollout is the share of users, 0 to 100, that see a flag.
type rollout int

const (
	off rollout = 0
	on  rollout = 100
)

// Manager holds flags parsed from a list like "profile_edit=on,read_receipts=25%".
type Manager struct {
	raw   map[string]string
	rules map[string]rollout
}

// NewManager parses a comma separated key=value list. Values are on/true/1,
// off/false/0 or N% for a stable per-user rollout. Malformed pairs are
// skipped and unknown values count as off.
func NewManager(raw string) *Manager {
	m := &Manager{raw: map[string]string{}, rules: map[string]rollout{}}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || value == "" {
			continue
		}
		m.raw[key] = value
		m.rules[key] = parseRollout(value)
	}
	return m
}

func parseRollout(value string) rollout {
	switch value {
	case "on", "true", "1":
		return on
	case "off", "false", "0":
		return off
	}
	pct, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return off
	}
	n, err := strconv.Atoi(pct)
	if err != nil {
		return off
	}
	return rollout(min(max(n, 0), 100))
}

// Enabled reports whether flag is on for userID. A partial rollout never
// includes the anonymous user 0. Unset flags are off.
func (m *Manager) Enabled(flag string, userID uint) bool {
	if m == nil {
		return false
	}
	r := m.rules[normalize(flag)]
	switch {
	case r == on:
		return true
	case r == off, userID == 0:
		return false
	}
	return bucket(flag, userID) < int(r)
}

// Raw returns a copy of the configured values.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m.raw)
}

// Snapshot evaluates every known and configured flag for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(Known))
	for _, name := range Known {
		out[name] = m.Enabled(name, userID)
	}
	if m != nil {
		for name := range m.rules {
			out[name] = m.Enabled(name, userID)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// bucket places userID in [0, 100) for flag, the same way on every call.
func bucket(flag string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(flag) + ":" + strconv.FormatUint(uint64(userID), 10)))
	return int(h.Sum32() % 100)
}
