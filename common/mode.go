package common

// ModeKind selects how a Mode value is applied to the current value.
type ModeKind int

const (
	// ModeOverwrite replaces the current value.
	ModeOverwrite ModeKind = iota
	// ModeOffset adds to the current value in world space.
	ModeOffset
	// ModeOffsetViewAligned adds a position offset along the viewer's yaw-aligned
	// forward (x) and right (z) axes; y stays a world-space offset.
	ModeOffsetViewAligned
	// ModeOffsetViewAlignedWithY is ModeOffsetViewAligned with forward and up also
	// following the pitch.
	ModeOffsetViewAlignedWithY
)

// Mode pairs a value with the way it is applied.
type Mode[T any] struct {
	Kind  ModeKind
	Value T
}

// Overwrite returns a Mode that replaces the current value with v.
func Overwrite[T any](v T) *Mode[T] {
	return &Mode[T]{Kind: ModeOverwrite, Value: v}
}

// Offset returns a Mode that adds v to the current value.
func Offset[T any](v T) *Mode[T] {
	return &Mode[T]{Kind: ModeOffset, Value: v}
}

// OffsetViewAligned returns a Mode that adds v along the viewer's horizontal axes.
func OffsetViewAligned[T any](v T) *Mode[T] {
	return &Mode[T]{Kind: ModeOffsetViewAligned, Value: v}
}

// OffsetViewAlignedWithY returns a Mode that adds v along the viewer's full view axes.
func OffsetViewAlignedWithY[T any](v T) *Mode[T] {
	return &Mode[T]{Kind: ModeOffsetViewAlignedWithY, Value: v}
}
