package gateway

import (
	"context"

	"tiger-client/internal/selector"
)

type PickKind string

const (
	PickSheets PickKind = "sheets"
	PickImages PickKind = "images"
)

// Dialogs are the local-only pickers some commands consult before issuing a
// request. ok=false means the user cancelled.
type Dialogs interface {
	PickOpen(ctx context.Context, kind PickKind) (paths []string, ok bool, err error)
	PickSave(ctx context.Context, kind PickKind, suggested string) (path string, ok bool, err error)
}

// NoDialogs cancels every picker.
type NoDialogs struct{}

func (NoDialogs) PickOpen(context.Context, PickKind) ([]string, bool, error) { return nil, false, nil }

func (NoDialogs) PickSave(context.Context, PickKind, string) (string, bool, error) {
	return "", false, nil
}

// StaticDialogs answers every picker with fixed paths. An empty answer cancels.
type StaticDialogs struct {
	Open []string
	Save string
}

func (d StaticDialogs) PickOpen(context.Context, PickKind) ([]string, bool, error) {
	return d.Open, len(d.Open) > 0, nil
}

func (d StaticDialogs) PickSave(context.Context, PickKind, string) (string, bool, error) {
	return d.Save, d.Save != "", nil
}

// ActionTogglePlayback resolves to play or pause from the current document.
const ActionTogglePlayback = "toggle_playback"

// Dispatch runs a named action. Actions are engine commands plus
// ActionTogglePlayback. Commands whose path arguments are absent from args run
// their picker first; a cancelled picker returns a nil Call and no error, and
// nothing is issued.
func (g *Gateway) Dispatch(ctx context.Context, action string, args map[string]any) (*Call, error) {
	switch action {
	case ActionTogglePlayback:
		d := selector.CurrentDocument(g.store.Snapshot())
		if d == nil {
			return nil, nil
		}
		if d.TimelineIsPlaying {
			return g.Invoke(ctx, "pause", nil)
		}
		return g.Invoke(ctx, "play", nil)
	case "new_document":
		if _, ok := args["path"]; !ok {
			return g.PromptNewDocument(ctx)
		}
	case "open_documents":
		if _, ok := args["paths"]; !ok {
			return g.PromptOpenDocuments(ctx)
		}
	case "save_as":
		if _, ok := args["newPath"]; !ok {
			return g.PromptSaveAs(ctx)
		}
	case "import_frames":
		if _, ok := args["paths"]; !ok {
			return g.PromptImportFrames(ctx)
		}
	}
	if _, ok := commands[action]; !ok {
		return nil, UnknownActionError{Action: action}
	}
	return g.Invoke(ctx, action, args)
}

func (g *Gateway) PromptNewDocument(ctx context.Context) (*Call, error) {
	p, ok, err := g.dialogs.PickSave(ctx, PickSheets, "")
	if err != nil || !ok {
		return nil, err
	}
	return g.Invoke(ctx, "new_document", map[string]any{"path": p})
}

func (g *Gateway) PromptOpenDocuments(ctx context.Context) (*Call, error) {
	paths, ok, err := g.dialogs.PickOpen(ctx, PickSheets)
	if err != nil || !ok {
		return nil, err
	}
	return g.Invoke(ctx, "open_documents", map[string]any{"paths": paths})
}

// PromptSaveAs suggests the current document's path. Without a current
// document there is nothing to save and no picker is shown.
func (g *Gateway) PromptSaveAs(ctx context.Context) (*Call, error) {
	d := selector.CurrentDocument(g.store.Snapshot())
	if d == nil {
		return nil, nil
	}
	p, ok, err := g.dialogs.PickSave(ctx, PickSheets, d.Path)
	if err != nil || !ok {
		return nil, err
	}
	return g.Invoke(ctx, "save_as", map[string]any{"newPath": p})
}

func (g *Gateway) PromptImportFrames(ctx context.Context) (*Call, error) {
	paths, ok, err := g.dialogs.PickOpen(ctx, PickImages)
	if err != nil || !ok {
		return nil, err
	}
	return g.Invoke(ctx, "import_frames", map[string]any{"paths": paths})
}
