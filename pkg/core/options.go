// Package core provides the main Reverie client and memory management functionality.
package core

// CaptureOption is a function type for configuring Capture operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type CaptureOption func(*CaptureOptions)

// CaptureOptions contains configuration options for Capture operations.
type CaptureOptions struct {
	// Kind identifies how the memory was captured. Defaults to KindText.
	Kind MemoryKind

	// RoomID explicitly assigns the memory to a room, overriding any room
	// suggested by classification. 0 leaves assignment to the classifier.
	RoomID int64

	// SkipClassification stores the raw content without deriving tags or a
	// summary.
	SkipClassification bool
}

// WithKind sets the capture kind.
//
// Example:
//
//	memory, _ := client.Capture(ctx, transcript, core.WithKind(core.KindVoice))
func WithKind(kind MemoryKind) CaptureOption {
	return func(opts *CaptureOptions) {
		opts.Kind = kind
	}
}

// WithRoom explicitly assigns the captured memory to a room.
//
// Example:
//
//	memory, _ := client.Capture(ctx, "raised beds by the fence", core.WithRoom(gardenRoomID))
func WithRoom(roomID int64) CaptureOption {
	return func(opts *CaptureOptions) {
		opts.RoomID = roomID
	}
}

// WithoutClassification stores the raw content without tags or a summary.
//
// Example:
//
//	memory, _ := client.Capture(ctx, content, core.WithoutClassification())
func WithoutClassification() CaptureOption {
	return func(opts *CaptureOptions) {
		opts.SkipClassification = true
	}
}

// applyCaptureOptions applies a slice of CaptureOption functions.
func applyCaptureOptions(opts []CaptureOption) *CaptureOptions {
	options := &CaptureOptions{
		Kind: KindText,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// UpdateOption is a function type for configuring UpdateMemory operations.
type UpdateOption func(*UpdateOptions)

// UpdateOptions contains the mutable fields of a memory update.
// Only fields explicitly set by an option are changed.
type UpdateOptions struct {
	// Summary replaces the memory's summary when set.
	Summary *string

	// Tags replace the memory's tags when set.
	Tags *[]string

	// RoomID moves the memory to another room (0 makes it roomless) when set.
	RoomID *int64
}

// WithUpdatedSummary replaces the memory's summary.
func WithUpdatedSummary(summary string) UpdateOption {
	return func(opts *UpdateOptions) {
		opts.Summary = &summary
	}
}

// WithUpdatedTags replaces the memory's tags.
func WithUpdatedTags(tags []string) UpdateOption {
	return func(opts *UpdateOptions) {
		opts.Tags = &tags
	}
}

// WithUpdatedRoom moves the memory to another room. Pass 0 to make it roomless.
func WithUpdatedRoom(roomID int64) UpdateOption {
	return func(opts *UpdateOptions) {
		opts.RoomID = &roomID
	}
}

// applyUpdateOptions applies a slice of UpdateOption functions.
func applyUpdateOptions(opts []UpdateOption) *UpdateOptions {
	options := &UpdateOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// HomeOption is a function type for configuring Home operations.
type HomeOption func(*HomeOptions)

// HomeOptions contains configuration options for Home operations.
type HomeOptions struct {
	// Count is the target number of insights. Defaults to the engine default.
	Count int
}

// WithCount sets the target number of insights for one home visit.
//
// Example:
//
//	insights, _ := client.Home(ctx, core.WithCount(5))
func WithCount(count int) HomeOption {
	return func(opts *HomeOptions) {
		opts.Count = count
	}
}

// applyHomeOptions applies a slice of HomeOption functions.
func applyHomeOptions(opts []HomeOption) *HomeOptions {
	options := &HomeOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
