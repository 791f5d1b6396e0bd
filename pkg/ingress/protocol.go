package ingress

const (
	// Server -> client
	StatusOp int = iota
	UpdateOp
	RemoveOp
	AnimationOp
	ConnectedOp
	// Client -> server
	InputOp
	DisconnectOp
)

// StatusMessage carries integrator telemetry. Broadcast on an interval and
// once on connect.
type StatusMessage struct {
	Op           int // StatusOp
	Region       string
	TimeDilation float64
	FPS          float64
	FrameTimeMs  float64
	Entities     int
	Agents       int
}

// UpdateMessage carries one entity's changed state. Flags uses the scene
// update bits; clients apply only the fields whose bit is set.
type UpdateMessage struct {
	Op     int // UpdateOp
	ID     string
	Handle uint32
	Flags  uint32

	Position [3]float64
	Rotation [4]float64
	Velocity [3]float64
	Scale    [3]float64
}

type RemoveMessage struct {
	Op int // RemoveOp
	ID string
}

type AnimationEntry struct {
	ID       string
	Sequence int32
}

// AnimationMessage carries a presence's full animation list, default first.
type AnimationMessage struct {
	Op         int // AnimationOp
	ID         string
	Animations []AnimationEntry
}

// ConnectedMessage tells a client which presence it controls.
type ConnectedMessage struct {
	Op     int // ConnectedOp
	ID     string
	Handle uint32
}

// InputMessage is the client's movement intent for its presence.
type InputMessage struct {
	Op       int // InputOp
	Velocity [3]float64
	// One of the scene movement states: 0 walking, 1 running, 2 flying.
	State int
}

type GenericMessage struct {
	Op int
}
