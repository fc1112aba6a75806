package keymap

import (
	"tiger-client/internal/gateway"
	"tiger-client/internal/model"
)

// Default returns the standard shortcut table.
func Default() *Table {
	t := NewTable()

	t.mustBind("ctrl+n", "new_document", "new", nil)
	t.mustBind("ctrl+o", "open_documents", "open", nil)
	t.mustBind("ctrl+s", "save", "save", nil)
	t.mustBind("ctrl+alt+s", "save_all", "save all", nil)
	t.mustBind("ctrl+shift+s", "save_as", "save as", nil)
	t.mustBind("ctrl+e", "export", "export", nil)
	t.mustBind("ctrl+shift+e", "begin_export_as", "export as", nil)
	t.mustBind("ctrl+w", "close_current_document", "close", nil)
	t.mustBind("ctrl+shift+w", "close_all_documents", "close all", nil)
	t.mustBind("ctrl+z", "undo", "undo", nil)
	t.mustBind("ctrl+shift+z", "redo", "redo", nil)
	t.mustBind("ctrl+x", "cut", "cut", nil)
	t.mustBind("ctrl+c", "copy", "copy", nil)
	t.mustBind("ctrl+v", "paste", "paste", nil)
	t.mustBind("ctrl+space", "center_workbench", "center", nil)
	t.mustBind("ctrl+plus", "zoom_in_workbench", "zoom in", nil)
	t.mustBind("ctrl+minus", "zoom_out_workbench", "zoom out", nil)
	t.mustBind("ctrl+0", "reset_workbench_zoom", "reset zoom", nil)
	t.mustBind("ctrl+alt+plus", "zoom_in_timeline", "zoom in timeline", nil)
	t.mustBind("ctrl+alt+minus", "zoom_out_timeline", "zoom out timeline", nil)
	t.mustBind("ctrl+alt+0", "reset_timeline_zoom", "reset timeline zoom", nil)
	t.mustBind("ctrl+a", "select_all", "select all", nil)

	nudges := map[string]model.NudgeDirection{
		"up": model.NudgeUp, "down": model.NudgeDown, "left": model.NudgeLeft, "right": model.NudgeRight,
	}
	for k, d := range nudges {
		t.mustBind("ctrl+"+k, "nudge_selection", "nudge", map[string]any{"direction": string(d), "largeNudge": false})
		t.mustBind("ctrl+shift+"+k, "nudge_selection", "nudge more", map[string]any{"direction": string(d), "largeNudge": true})
	}

	t.mustBind("space", gateway.ActionTogglePlayback, "play/pause", nil)
	t.mustBind("delete", "delete_selection", "delete", nil)

	browses := map[string]model.BrowseDirection{
		"up": model.BrowseUp, "down": model.BrowseDown, "left": model.BrowseLeft, "right": model.BrowseRight,
	}
	for k, d := range browses {
		t.mustBind(k, "browse_selection", "browse", map[string]any{"direction": string(d), "shift": false})
		t.mustBind("shift+"+k, "browse_selection", "extend", map[string]any{"direction": string(d), "shift": true})
	}
	t.mustBind("home", "browse_to_start", "first", map[string]any{"shift": false})
	t.mustBind("shift+home", "browse_to_start", "extend to first", map[string]any{"shift": true})
	t.mustBind("end", "browse_to_end", "last", map[string]any{"shift": false})
	t.mustBind("shift+end", "browse_to_end", "extend to last", map[string]any{"shift": true})
	t.mustBind("f2", "begin_rename_selection", "rename", nil)

	return t
}
