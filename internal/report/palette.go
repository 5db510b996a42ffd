package report

import colorful "github.com/lucasb-eyer/go-colorful"

// BlinkSteps is the length of the blink ramp.
const BlinkSteps = 5

// IdleFrames is how long an untouched cell keeps its highlight when no
// newer data has landed anywhere in the report.
const IdleFrames = 600

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

var (
	NewColour    = rgb(180, 255, 180)
	RecentColour = rgb(240, 255, 240)
	NormalColour = rgb(255, 255, 255)

	// blinkRamp runs from the bright highlight toward RecentColour.
	blinkRamp = func() [BlinkSteps]colorful.Color {
		var ramp [BlinkSteps]colorful.Color
		for i := range ramp {
			ramp[i] = NewColour.BlendRgb(RecentColour, float64(i)/BlinkSteps)
		}
		return ramp
	}()
)

// BlinkColour returns step i (0-based) of the blink ramp.
func BlinkColour(i int) colorful.Color { return blinkRamp[i] }

// State is the visual state of a cell.
type State uint8

const (
	StateNormal State = iota
	StateNew
	StateRecent
	StateBlink
	StateRemove
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRecent:
		return "recent"
	case StateBlink:
		return "blink"
	case StateRemove:
		return "remove"
	}
	return "normal"
}

// Paint is what a renderer needs to draw one cell.
type Paint struct {
	State  State
	Colour colorful.Color
}

// Normal reports whether the cell should be drawn with the base style.
func (p Paint) Normal() bool { return p.State == StateNormal }

var normalPaint = Paint{State: StateNormal, Colour: NormalColour}
