package report

// Cell addresses one report cell.
type Cell struct {
	Row    int
	Column int
}

// Animator drives the highlight of one cell. All frame deadlines are fixed
// at construction, so each tick is a stack pop and a table lookup.
type Animator struct {
	cell     Cell
	start    int
	blinkEnd int
	remove   int
	stack    [3]State
	depth    int
}

// NewAnimator starts an animation for cell at frame. A new row starts in
// StateNew, an updated one in StateRecent; a changed value blinks first.
func NewAnimator(cell Cell, frame int, rowIsNew, valueChanged bool) *Animator {
	a := &Animator{
		cell:     cell,
		start:    frame,
		blinkEnd: frame + 2*BlinkSteps,
		remove:   frame + IdleFrames,
	}
	if rowIsNew {
		a.push(StateNew)
	} else {
		a.push(StateRecent)
	}
	if valueChanged {
		a.push(StateBlink)
	}
	return a
}

func (a *Animator) Cell() Cell { return a.cell }

func (a *Animator) Start() int { return a.start }

func (a *Animator) push(s State) {
	if a.depth < len(a.stack) {
		a.stack[a.depth] = s
		a.depth++
	}
}

func (a *Animator) pop() (State, bool) {
	if a.depth == 0 {
		return StateNormal, false
	}
	a.depth--
	return a.stack[a.depth], true
}

// Animate advances one tick. painted is false when the cell keeps its
// current look; done is true once the cell is back to normal and the
// animator can be discarded.
func (a *Animator) Animate(frame, lastDataFrame int) (p Paint, painted, done bool) {
	if a.start != lastDataFrame {
		// newer data has landed elsewhere; fade right after the blink
		a.remove = a.blinkEnd
	}
	if a.remove <= frame {
		a.push(StateRemove)
	}
	s, ok := a.pop()
	if !ok {
		return Paint{}, false, false
	}
	switch s {
	case StateNew:
		return Paint{State: StateNew, Colour: NewColour}, true, false
	case StateRecent:
		return Paint{State: StateRecent, Colour: RecentColour}, true, false
	case StateRemove:
		return normalPaint, true, true
	}
	ttl := a.blinkEnd - frame - BlinkSteps
	if ttl > 0 {
		a.push(StateBlink)
		return Paint{State: StateBlink, Colour: blinkRamp[ttl-1]}, true, false
	}
	return Paint{State: StateRecent, Colour: RecentColour}, true, false
}
