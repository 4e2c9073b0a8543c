package symbols

import "fmt"

// Stats is a snapshot of registry counters.
type Stats struct {
	Declared  int
	Finalized int
	Poisoned  int
	Pending   int
	Active    int
	Blocked   int
	Sweeps    int
	Sealed    bool
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{
		Declared: len(r.order),
		Pending:  r.pending,
		Active:   r.active,
		Blocked:  r.blocked,
		Sweeps:   r.sweeps,
		Sealed:   r.sealed,
	}
	for _, e := range r.order {
		switch sym := e.Symbol(); sym.(type) {
		case *Poisoned:
			s.Poisoned++
		default:
			if sym.Stage() == StageFinalized {
				s.Finalized++
			}
		}
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("declared=%d finalized=%d poisoned=%d pending=%d tasks=%d/%d blocked",
		s.Declared, s.Finalized, s.Poisoned, s.Pending, s.Blocked, s.Active)
}
