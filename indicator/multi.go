package indicator

// Multi combines multiple Indicator implementations.
type Multi struct {
	indicators []Indicator
}

// NewMulti fans every call out to indicators in order.
func NewMulti(indicators ...Indicator) *Multi {
	return &Multi{indicators: indicators}
}

// Idle implements Indicator.Idle.
func (m *Multi) Idle() {
	for _, ind := range m.indicators {
		ind.Idle()
	}
}

// Recorded implements Indicator.Recorded.
func (m *Multi) Recorded(info *ReadInfo) {
	for _, ind := range m.indicators {
		ind.Recorded(info)
	}
}

// Duplicate implements Indicator.Duplicate.
func (m *Multi) Duplicate(info *ReadInfo) {
	for _, ind := range m.indicators {
		ind.Duplicate(info)
	}
}

// Rejected implements Indicator.Rejected.
func (m *Multi) Rejected(info *ReadInfo) {
	for _, ind := range m.indicators {
		ind.Rejected(info)
	}
}

// DecodeError implements Indicator.DecodeError.
func (m *Multi) DecodeError(info *ReadInfo) {
	for _, ind := range m.indicators {
		ind.DecodeError(info)
	}
}

// Connected implements Indicator.Connected.
func (m *Multi) Connected() {
	for _, ind := range m.indicators {
		ind.Connected()
	}
}

// ConnectionLost implements Indicator.ConnectionLost.
func (m *Multi) ConnectionLost() {
	for _, ind := range m.indicators {
		ind.ConnectionLost()
	}
}

// Shutdown implements Indicator.Shutdown.
func (m *Multi) Shutdown() {
	for _, ind := range m.indicators {
		ind.Shutdown()
	}
}

// Release implements Indicator.Release.
func (m *Multi) Release() error {
	var lastErr error
	for _, ind := range m.indicators {
		if err := ind.Release(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
