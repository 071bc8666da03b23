package dimension

// ReaderSet bundles the pose/bounds/observe functions for one Kind.
type ReaderSet struct {
	Pose    func(obj any) (Pose, bool)
	Bounds  func(obj any) (HalfExtents, bool)
	Observe func(obj any, onChange func()) (Observer, bool)
}

// Table implements Adapter as a closed per-Kind lookup table: Classify maps
// an object to its Kind, and Readers supplies the reader/observer pair for
// each Kind. This is the "dispatch is a small table lookup" shape spec.md
// §4.3 describes for a DimensionAdapter implementation.
type Table struct {
	Classify func(obj any) (Kind, bool)
	Readers  map[Kind]ReaderSet
}

func (t *Table) KindOf(obj any) (Kind, bool) {
	if t == nil || t.Classify == nil {
		return 0, false
	}
	return t.Classify(obj)
}

func (t *Table) Pose(obj any) (Pose, bool) {
	rs, ok := t.readerFor(obj)
	if !ok || rs.Pose == nil {
		return Pose{}, false
	}
	return rs.Pose(obj)
}

func (t *Table) Bounds(obj any) (HalfExtents, bool) {
	rs, ok := t.readerFor(obj)
	if !ok || rs.Bounds == nil {
		return HalfExtents{}, false
	}
	return rs.Bounds(obj)
}

func (t *Table) Observe(obj any, onChange func()) (Observer, bool) {
	rs, ok := t.readerFor(obj)
	if !ok || rs.Observe == nil {
		return nil, false
	}
	return rs.Observe(obj, onChange)
}

func (t *Table) readerFor(obj any) (ReaderSet, bool) {
	k, ok := t.KindOf(obj)
	if !ok {
		return ReaderSet{}, false
	}
	rs, ok := t.Readers[k]
	return rs, ok
}
