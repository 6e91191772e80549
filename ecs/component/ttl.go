package component

// TTL destroys its entity after Frames fixed ticks. Zero or negative frames
// expire on the next tick.
type TTL struct {
	Frames int
}

var TTLComponent = NewComponent[*TTL]()
