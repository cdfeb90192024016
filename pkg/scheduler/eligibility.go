package scheduler

// NightWatchSet holds the people already serving in the current night window.
// A day build replaces it when the evening watch hours open the next night.
type NightWatchSet map[string]struct{}

// Add inserts names into the set
func (s NightWatchSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Has reports whether name is in the set
func (s NightWatchSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Candidate is an eligible person and the TTR they were ranked with
type Candidate struct {
	Name string
	TTR  int
}

// EligibilityQuery describes the slot being staffed
type EligibilityQuery struct {
	// Hour is absolute: hour 0 is 00:00 of the first planned day
	Hour     int
	Position int
	Night    bool
	Watch    NightWatchSet
	// Booked holds names already staffed this hour
	Booked map[string]int
}

// Eligible returns the people who may fill the slot, sorted by name, together
// with the reasons the others were left out. People who last staffed the same
// position are dropped unless that would empty the pool, in which case the
// longest-rested of them stay.
func (r *Roster) Eligible(q EligibilityQuery) ([]Candidate, Rejections) {
	var (
		fresh    []Candidate
		repeats  []Candidate
		rejected Rejections
	)
	for _, name := range r.names {
		p := r.people[name]
		if _, booked := q.Booked[name]; booked {
			rejected.Booked++
			continue
		}
		switch {
		case p.TTR > 0:
			rejected.Resting++
			continue
		case !p.Available(q.Hour):
			rejected.TimeOff++
			continue
		case q.Night && q.Watch.Has(name):
			rejected.NightWatch++
			continue
		}
		c := Candidate{Name: name, TTR: p.TTR}
		if p.LastPosition == q.Position {
			repeats = append(repeats, c)
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) > 0 || len(repeats) == 0 {
		return fresh, rejected
	}
	return lowestTier(repeats), rejected
}

// lowestTier keeps the candidates sharing the lowest TTR
func lowestTier(pool []Candidate) []Candidate {
	low := pool[0].TTR
	for _, c := range pool[1:] {
		if c.TTR < low {
			low = c.TTR
		}
	}
	out := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if c.TTR == low {
			out = append(out, c)
		}
	}
	return out
}
