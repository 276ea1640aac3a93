package nav

// Kind identifies what a frame on the view stack is showing.
type Kind int

const (
	// Root list views, reachable with the number keys.
	KindEntities Kind = iota
	KindSolutions
	KindUsers
	KindOptionSets

	// Detail views pushed from a list row.
	KindEntityDetail
	KindSolutionDetail
	KindUserDetail
	KindOptionSetDetail
	KindSolutionLayers

	// Tool views.
	KindFetchXMLConsole
	KindDiscovery

	// Modal overlays. They sit on the stack like any other frame so Esc
	// dismisses them with a plain pop.
	KindSearchPopup
	KindGlobalSearch
	KindEnvSwitcher
)

// String names the kind for status lines and logs.
func (k Kind) String() string {
	switch k {
	case KindEntities:
		return "Entities"
	case KindSolutions:
		return "Solutions"
	case KindUsers:
		return "Users"
	case KindOptionSets:
		return "Option Sets"
	case KindEntityDetail:
		return "Entity"
	case KindSolutionDetail:
		return "Solution"
	case KindUserDetail:
		return "User"
	case KindOptionSetDetail:
		return "Option Set"
	case KindSolutionLayers:
		return "Layers"
	case KindFetchXMLConsole:
		return "FetchXML"
	case KindDiscovery:
		return "Environments"
	case KindSearchPopup:
		return "Search"
	case KindGlobalSearch:
		return "Global Search"
	case KindEnvSwitcher:
		return "Switch Environment"
	default:
		return "Unknown"
	}
}

// Modal reports whether frames of this kind render as overlays on top of the
// frame beneath them.
func (k Kind) Modal() bool {
	switch k {
	case KindSearchPopup, KindGlobalSearch, KindEnvSwitcher:
		return true
	default:
		return false
	}
}

// Frame is one entry on the view stack. Subject carries the identifier of the
// thing being viewed (entity logical name, solution ID, user ID, component
// ID) so a frame can be rebuilt after an environment switch drops its data.
type Frame struct {
	Kind    Kind
	Subject string
	Title   string
	Tab     int
	Cursor  int
	Filter  string
}

// Stack is the navigation state machine. The bottom frame is the current root
// list view and is never popped: popping at depth one signals quit instead.
//
// All mutations are pure in-memory operations. The stack knows nothing about
// data loading; callers fetch whatever the top frame needs after each change.
type Stack struct {
	frames []Frame
}

// New returns a stack rooted at the given view.
func New(root Kind) *Stack {
	return &Stack{frames: []Frame{{Kind: root}}}
}

// Top returns a pointer to the current frame. The stack always holds at least
// one frame, so Top never returns nil.
func (s *Stack) Top() *Frame {
	return &s.frames[len(s.frames)-1]
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Push enters a new view on top of the current one. The current frame keeps
// its cursor, tab and filter so it restores exactly when popped back to.
func (s *Stack) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// Pop leaves the current view. It returns false when the stack is at its root
// frame, which callers treat as a quit request.
func (s *Stack) Pop() bool {
	if len(s.frames) <= 1 {
		return false
	}
	s.frames = s.frames[:len(s.frames)-1]
	return true
}

// JumpTo collapses the stack to a single root frame of the given kind. Used
// by the number keys: switching root views discards any detail trail. If the
// stack is already rooted at kind and at depth one, the frame's state (cursor,
// filter) is preserved.
func (s *Stack) JumpTo(root Kind) {
	if len(s.frames) == 1 && s.frames[0].Kind == root {
		return
	}
	s.frames = []Frame{{Kind: root}}
}

// Reset rebuilds the stack from scratch at the given root. Unlike JumpTo it
// always clears frame state; used after an environment switch.
func (s *Stack) Reset(root Kind) {
	s.frames = []Frame{{Kind: root}}
}

// MoveCursor shifts the top frame's cursor by delta, clamped to [0, count-1].
// With no items the cursor pins to zero.
func (s *Stack) MoveCursor(delta, count int) {
	top := s.Top()
	top.Cursor += delta
	top.Cursor = clampCursor(top.Cursor, count)
}

// ClampCursor re-clamps the top frame's cursor after the item count changed,
// for example when a filter narrowed the list underneath it.
func (s *Stack) ClampCursor(count int) {
	top := s.Top()
	top.Cursor = clampCursor(top.Cursor, count)
}

// SwitchTab advances the top frame's tab by delta, wrapping modulo count.
func (s *Stack) SwitchTab(delta, count int) {
	if count <= 0 {
		return
	}
	top := s.Top()
	top.Tab = ((top.Tab+delta)%count + count) % count
}

// SetFilter replaces the top frame's filter text. Any change resets the
// cursor to the first row so the selection always points at a visible item.
func (s *Stack) SetFilter(query string) {
	top := s.Top()
	if top.Filter == query {
		return
	}
	top.Filter = query
	top.Cursor = 0
}

// Below returns the frame directly beneath the top, or nil at depth one.
// Modal overlays use it to read and mutate the view they cover.
func (s *Stack) Below() *Frame {
	if len(s.frames) < 2 {
		return nil
	}
	return &s.frames[len(s.frames)-2]
}

func clampCursor(cursor, count int) int {
	if count <= 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= count {
		return count - 1
	}
	return cursor
}
