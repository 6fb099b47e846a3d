package travel

import (
	"context"

	"fieldops/internal/core/geo"
)

// providerBatchMax caps one provider call; the distance-matrix API
// rejects requests beyond 25 origins or destinations.
const providerBatchMax = 25

// Matrix is a precomputed pairwise travel table over a fixed location
// set. Lookups are pure so the solver's hot loop stays deterministic and
// free of I/O; pairs missing from the table fall back to haversine.
type Matrix struct {
	minutes map[string]int
}

// Minutes returns the travel time for a pair, falling back per-pair.
func (m *Matrix) Minutes(from, to geo.Location) int {
	if from.SameCoords(to) {
		return MinMinutes
	}
	if m != nil {
		if v, ok := m.minutes[pairKey(from, to)]; ok {
			return v
		}
	}
	return Fallback(from, to)
}

// Len reports how many pairs the matrix holds.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.minutes)
}

// BuildMatrix precomputes travel minutes over the given locations.
// Provider calls are batched up to providerBatchMax a side; any cell the
// provider cannot answer is filled with the haversine fallback, so the
// resulting matrix is always complete.
func (o *Oracle) BuildMatrix(ctx context.Context, locs []geo.Location) *Matrix {
	uniq := dedupe(locs)
	m := &Matrix{minutes: make(map[string]int, len(uniq)*len(uniq))}

	if o.provider != nil {
		o.fillFromProvider(ctx, uniq, m)
	}

	for i := range uniq {
		for j := range uniq {
			if i == j {
				continue
			}
			key := pairKey(uniq[i], uniq[j])
			if _, ok := m.minutes[key]; !ok {
				m.minutes[key] = Fallback(uniq[i], uniq[j])
			}
		}
	}
	return m
}

// fillFromProvider covers the matrix in provider-sized tiles.
func (o *Oracle) fillFromProvider(ctx context.Context, locs []geo.Location, m *Matrix) {
	for oi := 0; oi < len(locs); oi += providerBatchMax {
		oEnd := min(oi+providerBatchMax, len(locs))
		for di := 0; di < len(locs); di += providerBatchMax {
			dEnd := min(di+providerBatchMax, len(locs))

			origins := locs[oi:oEnd]
			dests := locs[di:dEnd]
			rows, err := o.provider.Durations(ctx, origins, dests)
			if err != nil {
				o.log.Warn().Err(err).
					Int("origins", len(origins)).
					Int("destinations", len(dests)).
					Msg("matrix tile failed, haversine will fill")
				continue
			}
			for r := range rows {
				for c := range rows[r] {
					if rows[r][c] <= 0 {
						continue // provider had no route for this cell
					}
					from, to := origins[r], dests[c]
					if from.SameCoords(to) {
						continue
					}
					m.minutes[pairKey(from, to)] = clamp(minutesCeil(rows[r][c]))
				}
			}
		}
	}
}

func dedupe(locs []geo.Location) []geo.Location {
	seen := make(map[string]struct{}, len(locs))
	out := make([]geo.Location, 0, len(locs))
	for _, l := range locs {
		if _, ok := seen[l.Key()]; ok {
			continue
		}
		seen[l.Key()] = struct{}{}
		out = append(out, l)
	}
	return out
}
