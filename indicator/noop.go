package indicator

// Noop implements Indicator but does nothing.
// Used when no indicators are configured.
type Noop struct{}

func (n *Noop) Idle()                      {}
func (n *Noop) Recorded(info *ReadInfo)    {}
func (n *Noop) Duplicate(info *ReadInfo)   {}
func (n *Noop) Rejected(info *ReadInfo)    {}
func (n *Noop) DecodeError(info *ReadInfo) {}
func (n *Noop) Connected()                 {}
func (n *Noop) ConnectionLost()            {}
func (n *Noop) Shutdown()                  {}
func (n *Noop) Release() error             { return nil }
