package pathutil

import "strings"

// List implements flag.Value so a CLI flag can be repeated to collect
// multiple paths, mirroring the teacher's uri.List.
type List []Path

func (l *List) Set(value string) error {
	if value == "" {
		return nil
	}
	*l = append(*l, New(value))
	return nil
}

func (l List) String() string {
	if len(l) == 0 {
		return ""
	}
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}
