package blockpos

// Direction is one of the six axis-aligned face directions.
type Direction uint8

const (
	Up    Direction = iota // +y
	Down                   // -y
	East                   // +x
	West                   // -x
	South                  // +z
	North                  // -z
)

// Directions lists all six face directions.
var Directions = [6]Direction{Up, Down, East, West, South, North}

var directionNames = [6]string{"up", "down", "east", "west", "south", "north"}

// Opposite returns the direction pointing the other way along the same axis.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

// Offset returns the unit step for d.
func (d Direction) Offset() (dx int32, dy int16, dz int32) {
	switch d {
	case Up:
		return 0, 1, 0
	case Down:
		return 0, -1, 0
	case East:
		return 1, 0, 0
	case West:
		return -1, 0, 0
	case South:
		return 0, 0, 1
	case North:
		return 0, 0, -1
	}
	return 0, 0, 0
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}
