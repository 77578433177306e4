package sweep

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
)

// ErrUnknownLabel is returned when a name has no label mapping.
var ErrUnknownLabel = errors.New("unknown label")

// Labels maps user-facing names to Gmail label ids.
type Labels map[string]gc.LabelID

// DefaultLabels covers the categories the cleanup routes expose.
func DefaultLabels() Labels {
	return Labels{
		"spam":       gc.LabelSpam,
		"promotions": gc.LabelPromotions,
		"social":     gc.LabelSocial,
	}
}

// With returns a copy extended by extra name=id pairs.
func (l Labels) With(extra map[string]string) Labels {
	out := make(Labels, len(l)+len(extra))
	for name, id := range l {
		out[name] = id
	}
	for name, id := range extra {
		out[strings.ToLower(strings.TrimSpace(name))] = gc.LabelID(strings.TrimSpace(id))
	}
	return out
}

// Resolve looks name up case-insensitively.
func (l Labels) Resolve(name string) (gc.LabelID, error) {
	id, ok := l[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	return id, nil
}

// Names returns the known names in sorted order.
func (l Labels) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseLabelMap parses comma separated name=LABEL_ID pairs.
func ParseLabelMap(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" || strings.TrimSpace(kv[1]) == "" {
			return nil, fmt.Errorf("invalid label mapping %q", part)
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out, nil
}
