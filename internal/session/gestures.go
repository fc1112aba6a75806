package session

import (
	"context"

	"tiger-client/internal/gateway"
	"tiger-client/internal/model"
)

func (m *Manager) updateCmd(ctx context.Context, kind model.SessionKind, args map[string]any) (*gateway.Call, error) {
	return m.update(ctx, kind, kinds[kind].updates[0], args)
}

func (m *Manager) endCmd(ctx context.Context, kind model.SessionKind, args map[string]any) (*gateway.Call, error) {
	return m.end(ctx, kinds[kind].end[0], args, kind)
}

func ref(dir model.Direction, index int) map[string]any {
	return map[string]any{"direction": string(dir), "index": index}
}

// Frame drag and drop onto the timeline.

func (m *Manager) BeginDragFrame(ctx context.Context, frame string) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionFrameDrag, map[string]any{"frame": frame})
}

func (m *Manager) DropFrameOnTimeline(ctx context.Context, dir model.Direction, index int) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionFrameDrag, ref(dir, index))
}

func (m *Manager) EndDragFrame(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionFrameDrag, nil)
}

// Frame relocation (pointing moved or missing frames at new files).

func (m *Manager) BeginRelocateFrames(ctx context.Context) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionFrameRelocate, nil)
}

func (m *Manager) RelocateFrame(ctx context.Context, from, to string) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionFrameRelocate, map[string]any{"from": from, "to": to})
}

func (m *Manager) EndRelocateFrames(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionFrameRelocate, nil)
}

func (m *Manager) CancelRelocateFrames(ctx context.Context) (*gateway.Call, error) {
	return m.end(ctx, "cancel_relocate_frames", nil, model.SessionFrameRelocate)
}

// Keyframe drag and drop within the timeline.

func (m *Manager) BeginDragKeyframe(ctx context.Context, dir model.Direction, index int) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionKeyframeDrag, ref(dir, index))
}

func (m *Manager) DropKeyframeOnTimeline(ctx context.Context, dir model.Direction, index int) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionKeyframeDrag, ref(dir, index))
}

func (m *Manager) EndDragKeyframe(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionKeyframeDrag, nil)
}

// Keyframe duration drag. deltaMillis is measured from the start of the
// gesture, not from the previous update.

func (m *Manager) BeginDragKeyframeDuration(ctx context.Context, dir model.Direction, index int) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionKeyframeDuration, ref(dir, index))
}

func (m *Manager) UpdateDragKeyframeDuration(ctx context.Context, deltaMillis int64) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionKeyframeDuration, map[string]any{"deltaMillis": deltaMillis})
}

func (m *Manager) EndDragKeyframeDuration(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionKeyframeDuration, nil)
}

// Keyframe offset nudge. displacement is measured from the start of the
// gesture; bothAxis is forwarded to the engine unchanged.

func (m *Manager) BeginNudgeKeyframe(ctx context.Context, dir model.Direction, index int) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionKeyframeNudge, ref(dir, index))
}

func (m *Manager) UpdateNudgeKeyframe(ctx context.Context, displacement [2]int, bothAxis bool) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionKeyframeNudge, map[string]any{"displacement": displacement, "bothAxis": bothAxis})
}

func (m *Manager) EndNudgeKeyframe(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionKeyframeNudge, nil)
}

// Hitbox nudge.

func (m *Manager) BeginNudgeHitbox(ctx context.Context, name string) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionHitboxNudge, map[string]any{"name": name})
}

func (m *Manager) UpdateNudgeHitbox(ctx context.Context, displacement [2]int, bothAxis bool) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionHitboxNudge, map[string]any{"displacement": displacement, "bothAxis": bothAxis})
}

func (m *Manager) EndNudgeHitbox(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionHitboxNudge, nil)
}

// Hitbox resize along axis.

func (m *Manager) BeginResizeHitbox(ctx context.Context, name string, axis model.ResizeAxis) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionHitboxResize, map[string]any{"name": name, "axis": string(axis)})
}

func (m *Manager) UpdateResizeHitbox(ctx context.Context, displacement [2]int, preserveAspectRatio bool) (*gateway.Call, error) {
	return m.updateCmd(ctx, model.SessionHitboxResize, map[string]any{"displacement": displacement, "preserveAspectRatio": preserveAspectRatio})
}

func (m *Manager) EndResizeHitbox(ctx context.Context) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionHitboxResize, nil)
}

// Renames.

func (m *Manager) BeginRenameAnimation(ctx context.Context, name string) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionAnimationRename, map[string]any{"animationName": name})
}

func (m *Manager) EndRenameAnimation(ctx context.Context, newName string) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionAnimationRename, map[string]any{"newName": newName})
}

func (m *Manager) BeginRenameHitbox(ctx context.Context, name string) (*gateway.Call, error) {
	return m.begin(ctx, model.SessionHitboxRename, map[string]any{"hitboxName": name})
}

func (m *Manager) EndRenameHitbox(ctx context.Context, newName string) (*gateway.Call, error) {
	return m.endCmd(ctx, model.SessionHitboxRename, map[string]any{"newName": newName})
}

// CancelRename ends whichever rename is active.
func (m *Manager) CancelRename(ctx context.Context) (*gateway.Call, error) {
	return m.end(ctx, "cancel_rename", nil, model.SessionAnimationRename, model.SessionHitboxRename)
}
