package record

// ValidateChains checks the structural invariants of a full row set
// before it is served: interval ordering, replacement link integrity,
// contiguous splice points and acyclicity of the replacement graph.
// All problems are collected and returned together wrapped in
// ValidationErrors, so a single load surfaces every data error at once.
//
// Overlap between separate chains is allowed; a reduced-rate track and a
// standard-rate track may be valid simultaneously. Only the splice
// points within a chain are constrained.
func ValidateChains(records []Record) error {
	var errs []error

	byID := make(map[int64]Record, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; dup {
			errs = append(errs, &DuplicateIDError{ID: r.ID})
			continue
		}
		byID[r.ID] = r
	}

	for _, r := range records {
		if r.ValidFrom.IsZero() {
			errs = append(errs, &IntervalError{ID: r.ID, ValidFrom: r.ValidFrom, ValidUntil: r.ValidUntil})
		} else if r.ValidUntil != nil && !r.ValidFrom.Before(*r.ValidUntil) {
			errs = append(errs, &IntervalError{ID: r.ID, ValidFrom: r.ValidFrom, ValidUntil: r.ValidUntil})
		}

		if r.ReplacedBy == nil {
			continue
		}
		if r.ValidUntil == nil {
			errs = append(errs, &TerminalLinkError{ID: r.ID, ReplacedBy: *r.ReplacedBy})
			continue
		}
		succ, ok := byID[*r.ReplacedBy]
		if !ok {
			errs = append(errs, &DanglingLinkError{ID: r.ID, ReplacedBy: *r.ReplacedBy})
			continue
		}
		if !succ.ValidFrom.Equal(*r.ValidUntil) {
			errs = append(errs, &SpliceError{
				ID:            r.ID,
				ReplacedBy:    *r.ReplacedBy,
				ValidUntil:    *r.ValidUntil,
				SuccessorFrom: succ.ValidFrom,
			})
		}
	}

	if cycle := findCycle(records, byID); cycle != nil {
		errs = append(errs, &ChainCycleError{Path: cycle})
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// findCycle walks the replaced-by edges with a three-color depth-first
// search and returns the ids along the first cycle found, or nil.
func findCycle(records []Record, byID map[int64]Record) []int64 {
	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make(map[int64]int, len(byID))

	var path []int64
	var visit func(id int64) []int64
	visit = func(id int64) []int64 {
		color[id] = grey
		path = append(path, id)

		r, ok := byID[id]
		if ok && r.ReplacedBy != nil {
			next := *r.ReplacedBy
			switch color[next] {
			case grey:
				// Found the back edge; slice the path from the cycle entry.
				for i, pid := range path {
					if pid == next {
						cycle := append([]int64{}, path[i:]...)
						return append(cycle, next)
					}
				}
			case white:
				if _, exists := byID[next]; exists {
					if cycle := visit(next); cycle != nil {
						return cycle
					}
				}
			}
		}

		color[id] = black
		path = path[:len(path)-1]
		return nil
	}

	for _, r := range records {
		if color[r.ID] == white {
			if cycle := visit(r.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
