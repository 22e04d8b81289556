package capability

// NotImplementer is the opt-out marker. A provider implements it to list
// methods it carries but does not want calls routed to.
//
// Entries may be a bare method name ("Write"), an interface-qualified name
// ("Writer.Write") or a fully qualified name ("bufio.Writer.Write"); a bare
// name opts out of that method on every capability interface.
type NotImplementer interface {
	NotImplemented() []string
}

// OptOutSet is a set of opt-out entries in the forms accepted by NotImplementer.
type OptOutSet map[string]struct{}

// NewOptOutSet builds a set from the given entries.
func NewOptOutSet(entries ...string) OptOutSet {
	s := make(OptOutSet, len(entries))
	s.Add(entries...)
	return s
}

// OptOutsOf returns the opt-out set declared by v, or nil if v carries no marker.
func OptOutsOf(v any) OptOutSet {
	ni, ok := v.(NotImplementer)
	if !ok {
		return nil
	}
	return NewOptOutSet(ni.NotImplemented()...)
}

// Add inserts entries into the set.
func (s OptOutSet) Add(entries ...string) {
	for _, e := range entries {
		if e != "" {
			s[e] = struct{}{}
		}
	}
}

// Excludes reports whether sig is opted out.
func (s OptOutSet) Excludes(sig Signature) bool {
	if len(s) == 0 {
		return false
	}
	if _, ok := s[sig.Method]; ok {
		return true
	}
	if sig.Interface == nil {
		return false
	}
	if _, ok := s[sig.Interface.Name()+"."+sig.Method]; ok {
		return true
	}
	_, ok := s[sig.Interface.String()+"."+sig.Method]
	return ok
}

// Len returns the number of entries.
func (s OptOutSet) Len() int {
	return len(s)
}
