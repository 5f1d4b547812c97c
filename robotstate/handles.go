package robotstate

// ModelHandle exposes the latest dynamic model terms of an aggregator to controllers running in
// the same control cycle. Every accessor returns a copy.
type ModelHandle struct {
	name       string
	aggregator *Aggregator
}

// NewModelHandle returns a model handle registered under name.
func NewModelHandle(name string, aggregator *Aggregator) *ModelHandle {
	return &ModelHandle{name: name, aggregator: aggregator}
}

// Name returns the handle name.
func (h *ModelHandle) Name() string {
	return h.name
}

// Mass returns the NxN mass matrix, row-major.
func (h *ModelHandle) Mass() []float64 {
	return cloneFloats(h.aggregator.state.MassMatrix)
}

// Coriolis returns the Coriolis torques.
func (h *ModelHandle) Coriolis() []float64 {
	return cloneFloats(h.aggregator.state.Coriolis)
}

// Gravity returns the gravity torques.
func (h *ModelHandle) Gravity() []float64 {
	return cloneFloats(h.aggregator.state.Gravity)
}

// ZeroJacobian returns the 6xN Jacobian expressed in the root frame, row-major.
func (h *ModelHandle) ZeroJacobian() []float64 {
	return cloneFloats(h.aggregator.state.Jacobian)
}

// StateHandle exposes the latest robot state of an aggregator.
type StateHandle struct {
	name       string
	aggregator *Aggregator
}

// NewStateHandle returns a state handle registered under name.
func NewStateHandle(name string, aggregator *Aggregator) *StateHandle {
	return &StateHandle{name: name, aggregator: aggregator}
}

// Name returns the handle name.
func (h *StateHandle) Name() string {
	return h.name
}

// State returns a deep copy of the latest state.
func (h *StateHandle) State() *State {
	return h.aggregator.state.Clone()
}

func cloneFloats(v []float64) []float64 {
	return append([]float64(nil), v...)
}
