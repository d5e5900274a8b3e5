package world

// ChangeKind names the store a Change refers to.
type ChangeKind int

const (
	KindModel ChangeKind = iota
	KindLight
	KindCamera
	KindWorldEnvironment
	// KindAll is only used with ActionClear.
	KindAll
)

func (k ChangeKind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	case KindWorldEnvironment:
		return "world_environment"
	default:
		return "all"
	}
}

// ChangeAction is what happened to the entry.
type ChangeAction int

const (
	ActionAdded ChangeAction = iota
	ActionChanged
	ActionRemoved
	ActionClear
)

func (a ChangeAction) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionChanged:
		return "changed"
	case ActionRemoved:
		return "removed"
	default:
		return "clear"
	}
}

// Change records one mutation of the world for consumers that mirror its state,
// such as the renderer's caches.
type Change struct {
	Kind   ChangeKind
	Action ChangeAction
	// Label is empty for the world environment and for ActionClear.
	Label string
}

// ChangeList is an ordered record of the changes applied since the last take.
type ChangeList []Change

// Push appends changes in order.
func (l *ChangeList) Push(changes ...Change) {
	*l = append(*l, changes...)
}

// Take returns the recorded changes and leaves the list empty.
func (l *ChangeList) Take() ChangeList {
	taken := *l
	*l = nil
	return taken
}

func (l ChangeList) Len() int {
	return len(l)
}

// Filter returns the changes of one kind, keeping their order. Clear(All) entries
// are included for every kind since they affect all stores.
//
// Parameters:
//   - kind: the store to filter for
//
// Returns:
//   - ChangeList: a new list, never aliasing l
func (l ChangeList) Filter(kind ChangeKind) ChangeList {
	var out ChangeList
	for _, c := range l {
		if c.Kind == kind || c.Kind == KindAll {
			out = append(out, c)
		}
	}
	return out
}
