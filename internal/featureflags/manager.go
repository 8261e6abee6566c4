// Package featureflags evaluates on/off and percentage-rollout flags.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	TradeNotifications   = "trade_notifications"
	TradeImageProcessing = "trade_image_processing"
)

// Defaults apply when FEATURE_FLAGS does not mention a flag.
var Defaults = map[string]string{
	TradeNotifications:   "on",
	TradeImageProcessing: "off",
}

// Manager evaluates feature flags defined in a key=value list layered over
// Defaults. Example: "trade_notifications=off,trade_image_processing=25%"
type Manager struct {
	flags map[string]string
}

// NewManager parses raw and merges it over Defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for userID.
// Values: on/true/1, off/false/0, or N% for a deterministic per-user rollout.
// A nil Manager falls back to Defaults.
func (m *Manager) Enabled(name string, userID uint) bool {
	flags := Defaults
	if m != nil {
		flags = m.flags
	}
	value, ok := flags[normalize(name)]
	if !ok {
		return false
	}
	return evaluate(name, value, userID)
}

func evaluate(name, value string, userID uint) bool {
	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name, value := range m.flags {
		out[name] = evaluate(name, value, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
