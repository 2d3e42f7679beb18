package aggregator

import (
	"fmt"
	"strings"
)

// Strategy decides which definition survives a name collision
type Strategy int

const (
	// FirstWins keeps the definition registered first
	FirstWins Strategy = iota
	// LastWins replaces earlier definitions
	LastWins
	// Error rejects every definition of a colliding name
	Error
	// Merge combines compatible definitions into one
	Merge
)

var strategyNames = map[Strategy]string{
	FirstWins: "first_wins",
	LastWins:  "last_wins",
	Error:     "error",
	Merge:     "merge",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy accepts the snake_case names plus "first", "last", "fail"
// and "use_first"/"use_last"
func ParseStrategy(text string) (Strategy, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), "-", "_")) {
	case "", "first_wins", "first", "use_first", "usefirst", "firstwins":
		return FirstWins, nil
	case "last_wins", "last", "use_last", "uselast", "lastwins":
		return LastWins, nil
	case "error", "fail":
		return Error, nil
	case "merge":
		return Merge, nil
	}
	return FirstWins, fmt.Errorf("unknown conflict strategy '%s'", text)
}

// MarshalText implements encoding.TextMarshaler
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConflictKind classifies a collision
type ConflictKind int

const (
	DuplicateName ConflictKind = iota
	AmbiguousAlias
	PrefixConflict
)

func (k ConflictKind) String() string {
	switch k {
	case DuplicateName:
		return "duplicate_name"
	case AmbiguousAlias:
		return "ambiguous_alias"
	case PrefixConflict:
		return "prefix_conflict"
	default:
		return "unknown"
	}
}

// Conflict is one detected collision and how it was resolved
type Conflict struct {
	Kind         ConflictKind
	Name         string
	FirstSource  string
	SecondSource string
	Resolution   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s '%s' (%s, %s): %s", c.Kind, c.Name, c.FirstSource, c.SecondSource, c.Resolution)
}

// ConflictReport lists conflicts in detection order
type ConflictReport struct {
	Conflicts []Conflict
}

// HasConflicts reports whether anything collided
func (r ConflictReport) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Count returns the number of conflicts of the given kind
func (r ConflictReport) Count(kind ConflictKind) int {
	n := 0
	for _, c := range r.Conflicts {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func (r ConflictReport) String() string {
	if len(r.Conflicts) == 0 {
		return "no conflicts"
	}
	lines := make([]string, len(r.Conflicts))
	for i, c := range r.Conflicts {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}
