package dynamics

import "math"

// VacuumRange returns the drag-free range of a point mass launched at speed
// and flight-path angle gamma from height above flat ground.
func VacuumRange(speed, gamma, height, g float64) float64 {
	vx := speed * math.Cos(gamma)
	vy := speed * math.Sin(gamma)
	tof := (vy + math.Sqrt(vy*vy+2*g*height)) / g
	return vx * tof
}
