package input

// Dial maps encoder steps onto a menu index over a fixed number of
// entries. The index always stays in [0, count); deltas of any sign
// and magnitude wrap modulo the entry count.
type Dial struct {
	count int
	index int
	last  int
}

// NewDial creates a dial over count entries, starting at index 0.
func NewDial(count int) *Dial {
	return &Dial{count: count}
}

// Apply consumes the encoder's current step counter and returns the
// resulting index and whether it moved.
func (d *Dial) Apply(steps int) (int, bool) {
	delta := steps - d.last
	if delta == 0 {
		return d.index, false
	}
	d.last = steps
	d.index = wrapIndex(d.index, delta, d.count)
	return d.index, true
}

// Index returns the current menu index.
func (d *Dial) Index() int {
	return d.index
}

// Resync absorbs encoder motion that happened while the loop was
// blocked in an action, so the selection doesn't jump afterwards.
func (d *Dial) Resync(steps int) {
	d.last = steps
}

// wrapIndex computes (start + delta) mod count with the result always
// in [0, count), also for negative deltas.
func wrapIndex(start, delta, count int) int {
	i := (start + delta) % count
	if i < 0 {
		i += count
	}
	return i
}
