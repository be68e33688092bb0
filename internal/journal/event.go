package journal

// Op names a journaled device operation.
type Op string

const (
	OpAttach Op = "attach"
	OpDetach Op = "detach"
	OpPush   Op = "push"
	OpPop    Op = "pop"
	OpResize Op = "resize"
)

// Event is one journal row. Depth and Capacity are the store's state
// after the operation; Value is set for successful pushes and pops, Arg
// for resize requests (including rejected ones, so bad requests stay
// visible in the trace).
type Event struct {
	Seq      int64  `json:"seq"`
	Session  string `json:"session"`
	Op       Op     `json:"op"`
	Value    *int32 `json:"value,omitempty"`
	Arg      *int   `json:"arg,omitempty"`
	Status   string `json:"status"`
	Depth    int    `json:"depth"`
	Capacity int    `json:"capacity"`
}
