package model

// SessionKind identifies a multi-step interaction recorded on a Document.
type SessionKind string

const (
	SessionFrameDrag        SessionKind = "frame-drag"
	SessionFrameRelocate    SessionKind = "frame-relocate"
	SessionKeyframeDrag     SessionKind = "keyframe-drag"
	SessionKeyframeDuration SessionKind = "keyframe-duration"
	SessionKeyframeNudge    SessionKind = "keyframe-nudge"
	SessionHitboxNudge      SessionKind = "hitbox-nudge"
	SessionHitboxResize     SessionKind = "hitbox-resize"
	SessionAnimationRename  SessionKind = "animation-rename"
	SessionHitboxRename     SessionKind = "hitbox-rename"
)

var AllSessionKinds = []SessionKind{
	SessionFrameDrag,
	SessionFrameRelocate,
	SessionKeyframeDrag,
	SessionKeyframeDuration,
	SessionKeyframeNudge,
	SessionHitboxNudge,
	SessionHitboxResize,
	SessionAnimationRename,
	SessionHitboxRename,
}

// SessionActive reports whether the session field for kind is populated.
func (d *Document) SessionActive(kind SessionKind) bool {
	if d == nil {
		return false
	}
	switch kind {
	case SessionFrameDrag:
		return len(d.FramesBeingDragged) > 0
	case SessionFrameRelocate:
		return d.FramesBeingRelocated != nil
	case SessionKeyframeDrag:
		return len(d.KeyframesBeingDragged) > 0
	case SessionKeyframeDuration:
		return d.IsDraggingKeyframeDuration
	case SessionKeyframeNudge:
		return len(d.KeyframesBeingNudged) > 0
	case SessionHitboxNudge:
		return len(d.HitboxesBeingNudged) > 0
	case SessionHitboxResize:
		return len(d.HitboxesBeingResized) > 0
	case SessionAnimationRename:
		return d.AnimationBeingRenamed != nil
	case SessionHitboxRename:
		return d.HitboxBeingRenamed != nil
	}
	return false
}

// ActiveSessions lists the session kinds whose fields are populated, in
// AllSessionKinds order.
func (d *Document) ActiveSessions() []SessionKind {
	var out []SessionKind
	for _, k := range AllSessionKinds {
		if d.SessionActive(k) {
			out = append(out, k)
		}
	}
	return out
}
