package core

// Size describes the dimensions of a grid.
type Size struct {
	W int
	H int
}

// Layer classifies a geology pixel.
type Layer uint8

const (
	Ocean Layer = iota
	TopShale
	MiddleSandstone
	BottomShale
	NumLayer
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case Ocean:
		return "ocean"
	case TopShale:
		return "top-shale"
	case MiddleSandstone:
		return "sandstone"
	case BottomShale:
		return "bottom-shale"
	}
	return "unknown"
}

// Section is a precomputed rock-layer classification of the playing area.
// x runs over [0, Width) including the hidden border, y over [0, Height).
type Section interface {
	Size() Size
	// Layer returns the layer containing pixel (x, y).
	Layer(x, y int) Layer
	// Bottom returns the y coordinate one past the last pixel of layer l in
	// column x. l must be Ocean, TopShale or MiddleSandstone.
	Bottom(l Layer, x int) int
	// OceanFloor returns the depth of the ocean bottom in pixels.
	OceanFloor() int
}

// SectionFactory builds a Section of the given size from a seed.
type SectionFactory func(size Size, seed int64) Section

var sections = map[string]SectionFactory{}

// RegisterSection adds a section factory under the provided name.
func RegisterSection(name string, f SectionFactory) {
	if name == "" || f == nil {
		return
	}
	sections[name] = f
}

// Sections exposes the registry of available section factories.
func Sections() map[string]SectionFactory {
	return sections
}

// Request selects what a frame does.
type Request uint8

const (
	// Update advances the simulation.
	Update Request = 1 << iota
	// Draw renders the current state.
	Draw
)
