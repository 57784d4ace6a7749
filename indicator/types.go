package indicator

// ReadInfo describes a card read for display purposes.
type ReadInfo struct {
	CardType     string
	Format       string
	BitLength    int
	FacilityCode uint32
	CardNumber   uint32
	Hex          string

	// Reason is set for rejected reads and decode errors.
	Reason string
}
