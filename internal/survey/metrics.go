package survey

// PathLength sums the straight-line distances between consecutive sighting
// points in sequence order.
func PathLength(sightings []Sighting) float64 {
	var total float64
	for i := 1; i < len(sightings); i++ {
		total += sightings[i].Point.DistanceTo(sightings[i-1].Point)
	}
	return total
}

// ElevationGain is the altitude of the last sighting minus the altitude of
// the first. Intermediate climbs and descents do not count.
func ElevationGain(sightings []Sighting) float64 {
	if len(sightings) < 2 {
		return 0
	}
	first := sightings[0].Coordinate()
	last := sightings[len(sightings)-1].Coordinate()
	return last.Alt - first.Alt
}

// ProfilePoint is one sample of the elevation profile along the path.
type ProfilePoint struct {
	Distance float64 `json:"distance_m" yaml:"distance_m"`
	Altitude float64 `json:"altitude_m" yaml:"altitude_m"`
}

// Profile returns the cumulative path distance and altitude at every
// sighting, in sequence order.
func Profile(sightings []Sighting) []ProfilePoint {
	out := make([]ProfilePoint, 0, len(sightings))
	var dist float64
	for i, s := range sightings {
		if i > 0 {
			dist += s.Point.DistanceTo(sightings[i-1].Point)
		}
		out = append(out, ProfilePoint{Distance: dist, Altitude: s.Coordinate().Alt})
	}
	return out
}
