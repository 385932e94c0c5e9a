package attr

// Set is a named collection of the object/aperture attributes that
// apply to the next graphic object, indexed by attribute key so a
// Writer can diff it against the previously emitted set.
type Set struct {
	byKey map[string]Attribute
	order []string
}

// NewSet builds a Set from attrs, keeping the order they are given in
// for any key not already covered by the fixed emission order.
func NewSet(attrs ...Attribute) Set {
	s := Set{byKey: make(map[string]Attribute, len(attrs))}
	for _, a := range attrs {
		s.put(a)
	}
	return s
}

func (s *Set) put(a Attribute) {
	if s.byKey == nil {
		s.byKey = make(map[string]Attribute)
	}
	if _, ok := s.byKey[a.Key]; !ok {
		s.order = append(s.order, a.Key)
	}
	s.byKey[a.Key] = a
}

// emissionOrder is the fixed key order the generator uses whenever it
// writes a block of object/aperture attributes, so output is
// deterministic regardless of the order callers build a Set in.
var emissionOrder = []string{
	".AperFunction",
	".N",
	".C",
	".P",
	".CVal",
	".CMnt",
	".CMfr",
	".CMPN",
	".CFtp",
	".CRot",
}

// orderedKeys returns every key present in either set, fixed-emission-
// order keys first, then any remaining keys in their sets' insertion
// order, so the diff is reproducible for keys the fixed order doesn't
// know about.
func orderedKeys(current, next Set) []string {
	seen := map[string]bool{}
	var out []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range emissionOrder {
		_, inCurrent := current.byKey[k]
		_, inNext := next.byKey[k]
		if inCurrent || inNext {
			add(k)
		}
	}
	for _, k := range current.order {
		add(k)
	}
	for _, k := range next.order {
		add(k)
	}
	return out
}

// Writer tracks the attribute set currently in effect on the output
// stream and emits only the statements needed to move to a new set
// (unsets first, then sets, in the fixed emission order). Gerber
// readers interpret attributes as sticky state rather than per-object
// data, so anything unchanged is simply not repeated.
type Writer struct {
	current Set
}

// NewWriter returns a Writer with no attributes currently in effect.
func NewWriter() *Writer {
	return &Writer{current: Set{byKey: map[string]Attribute{}}}
}

// Diff computes the statements needed to move from the writer's
// current attribute set to next, updates the writer's current set to
// next, and returns the rendered Gerber comment lines in order:
// deletions (unset) for every key present before but absent from next,
// then sets for every key present in next that is new or changed (a
// changed value needs no delete; setting the key again replaces it).
func (w *Writer) Diff(next Set) []string {
	var unsets, sets []string
	for _, k := range orderedKeys(w.current, next) {
		oldAttr, hadOld := w.current.byKey[k]
		newAttr, hasNew := next.byKey[k]
		switch {
		case hadOld && !hasNew:
			unsets = append(unsets, Unset(k).ToGerberString())
		case !hadOld && hasNew:
			sets = append(sets, newAttr.ToGerberString())
		case hadOld && hasNew && !attrEqual(oldAttr, newAttr):
			sets = append(sets, newAttr.ToGerberString())
		}
	}

	w.current = cloneSet(next)

	out := make([]string, 0, len(unsets)+len(sets))
	out = append(out, unsets...)
	out = append(out, sets...)
	return out
}

// Reset clears the writer's current attribute set without emitting
// anything, for use at the start of a new output file.
func (w *Writer) Reset() {
	w.current = Set{byKey: map[string]Attribute{}}
}

func cloneSet(s Set) Set {
	out := Set{
		byKey: make(map[string]Attribute, len(s.byKey)),
		order: append([]string(nil), s.order...),
	}
	for k, v := range s.byKey {
		out.byKey[k] = v
	}
	return out
}

func attrEqual(a, b Attribute) bool {
	if a.Type != b.Type || a.Key != b.Key || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			return false
		}
	}
	return true
}
