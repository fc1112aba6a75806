package gateway

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"

	"tiger-client/internal/model"
)

// ArgKind is the wire type of one command argument.
type ArgKind string

const (
	ArgString     ArgKind = "string"
	ArgStrings    ArgKind = "strings"
	ArgBool       ArgKind = "bool"
	ArgInt        ArgKind = "int"
	ArgNumber     ArgKind = "number"
	ArgVec2       ArgKind = "vec2"
	ArgOptVec2    ArgKind = "vec2?"
	ArgDirection  ArgKind = "direction"
	ArgPreset     ArgKind = "preset"
	ArgListMode   ArgKind = "list-mode"
	ArgNudge      ArgKind = "nudge-direction"
	ArgBrowse     ArgKind = "browse-direction"
	ArgResizeAxis ArgKind = "resize-axis"
)

type Arg struct {
	Name string
	Kind ArgKind
}

type Command struct {
	Name string
	Args []Arg
}

func cmd(name string, args ...Arg) Command { return Command{Name: name, Args: args} }

func a(name string, kind ArgKind) Arg { return Arg{Name: name, Kind: kind} }

var commandList = []Command{
	// App and documents.
	cmd("get_state"),
	cmd("finalize_startup"),
	cmd("show_error_message", a("title", ArgString), a("summary", ArgString), a("details", ArgString)),
	cmd("acknowledge_error"),
	cmd("new_document", a("path", ArgString)),
	cmd("open_documents", a("paths", ArgStrings)),
	cmd("focus_document", a("path", ArgString)),
	cmd("focus_next_document"),
	cmd("focus_previous_document"),
	cmd("close_document", a("path", ArgString)),
	cmd("close_current_document"),
	cmd("close_all_documents"),
	cmd("close_without_saving"),
	cmd("request_exit"),
	cmd("cancel_exit"),
	cmd("reveal_in_explorer", a("path", ArgString)),
	cmd("save"),
	cmd("save_as", a("newPath", ArgString)),
	cmd("save_all"),
	cmd("undo"),
	cmd("redo"),
	cmd("cut"),
	cmd("copy"),
	cmd("paste"),

	// Lists and view.
	cmd("set_frames_list_mode", a("listMode", ArgListMode)),
	cmd("set_frames_list_offset", a("offset", ArgNumber)),
	cmd("set_animations_list_offset", a("offset", ArgNumber)),
	cmd("set_hitboxes_list_offset", a("offset", ArgNumber)),
	cmd("filter_frames", a("searchQuery", ArgString)),
	cmd("filter_animations", a("searchQuery", ArgString)),
	cmd("pan", a("delta", ArgVec2)),
	cmd("center_workbench"),
	cmd("zoom_in_workbench"),
	cmd("zoom_out_workbench"),
	cmd("zoom_in_workbench_around", a("fixedPoint", ArgVec2)),
	cmd("zoom_out_workbench_around", a("fixedPoint", ArgVec2)),
	cmd("set_workbench_zoom_factor", a("zoomFactor", ArgNumber)),
	cmd("reset_workbench_zoom"),
	cmd("enable_sprite_darkening"),
	cmd("disable_sprite_darkening"),
	cmd("hide_sprite"),
	cmd("show_sprite"),
	cmd("hide_hitboxes"),
	cmd("show_hitboxes"),
	cmd("hide_origin"),
	cmd("show_origin"),

	// Frames.
	cmd("import_frames", a("paths", ArgStrings)),
	cmd("delete_frame", a("path", ArgString)),
	cmd("delete_selected_frames"),

	// Selection.
	cmd("select_frame", a("path", ArgString), a("shift", ArgBool), a("ctrl", ArgBool)),
	cmd("select_animation", a("name", ArgString), a("shift", ArgBool), a("ctrl", ArgBool)),
	cmd("select_keyframe", a("direction", ArgDirection), a("index", ArgInt), a("shift", ArgBool), a("ctrl", ArgBool)),
	cmd("select_hitbox", a("name", ArgString), a("shift", ArgBool), a("ctrl", ArgBool)),
	cmd("select_all"),
	cmd("clear_selection"),
	cmd("delete_selection"),
	cmd("nudge_selection", a("direction", ArgNudge), a("largeNudge", ArgBool)),
	cmd("browse_selection", a("direction", ArgBrowse), a("shift", ArgBool)),
	cmd("browse_to_start", a("shift", ArgBool)),
	cmd("browse_to_end", a("shift", ArgBool)),
	cmd("begin_rename_selection"),

	// Animations.
	cmd("create_animation"),
	cmd("edit_animation", a("name", ArgString)),
	cmd("delete_animation", a("name", ArgString)),
	cmd("delete_selected_animations"),
	cmd("set_animation_looping", a("isLooping", ArgBool)),
	cmd("apply_direction_preset", a("preset", ArgPreset)),
	cmd("select_direction", a("direction", ArgDirection)),

	// Timeline.
	cmd("tick", a("deltaTimeMillis", ArgNumber)),
	cmd("play"),
	cmd("pause"),
	cmd("scrub_timeline", a("timeMillis", ArgInt)),
	cmd("jump_to_animation_start"),
	cmd("jump_to_animation_end"),
	cmd("jump_to_previous_frame"),
	cmd("jump_to_next_frame"),
	cmd("set_snap_keyframe_durations", a("snap", ArgBool)),
	cmd("set_snap_keyframes_to_other_keyframes", a("snap", ArgBool)),
	cmd("set_snap_keyframes_to_multiples_of_duration", a("snap", ArgBool)),
	cmd("set_keyframe_snapping_base_duration", a("durationMillis", ArgInt)),
	cmd("zoom_in_timeline"),
	cmd("zoom_out_timeline"),
	cmd("zoom_in_timeline_around", a("fixedPoint", ArgNumber)),
	cmd("zoom_out_timeline_around", a("fixedPoint", ArgNumber)),
	cmd("set_timeline_zoom_amount", a("amount", ArgNumber)),
	cmd("reset_timeline_zoom"),
	cmd("set_timeline_offset", a("offsetMillis", ArgNumber)),
	cmd("pan_timeline", a("delta", ArgNumber)),

	// Keyframes.
	cmd("delete_selected_keyframes"),
	cmd("set_keyframe_duration", a("durationMillis", ArgInt)),
	cmd("set_keyframe_offset_x", a("x", ArgInt)),
	cmd("set_keyframe_offset_y", a("y", ArgInt)),

	// Hitboxes.
	cmd("create_hitbox", a("position", ArgOptVec2)),
	cmd("delete_hitbox", a("name", ArgString)),
	cmd("delete_selected_hitboxes"),
	cmd("lock_hitboxes"),
	cmd("unlock_hitboxes"),
	cmd("set_hitbox_position_x", a("x", ArgInt)),
	cmd("set_hitbox_position_y", a("y", ArgInt)),
	cmd("set_hitbox_width", a("width", ArgInt)),
	cmd("set_hitbox_height", a("height", ArgInt)),
	cmd("toggle_preserve_aspect_ratio"),

	// Export.
	cmd("export"),
	cmd("begin_export_as"),
	cmd("set_export_template_file", a("file", ArgString)),
	cmd("set_export_atlas_image_file", a("file", ArgString)),
	cmd("set_export_metadata_file", a("file", ArgString)),
	cmd("set_export_metadata_paths_root", a("directory", ArgString)),
	cmd("cancel_export_as"),
	cmd("end_export_as"),

	// Sessions. These are normally issued through the session manager.
	cmd("begin_drag_and_drop_frame", a("frame", ArgString)),
	cmd("drop_frame_on_timeline", a("direction", ArgDirection), a("index", ArgInt)),
	cmd("end_drag_and_drop_frame"),
	cmd("begin_relocate_frames"),
	cmd("relocate_frame", a("from", ArgString), a("to", ArgString)),
	cmd("end_relocate_frames"),
	cmd("cancel_relocate_frames"),
	cmd("begin_drag_and_drop_keyframe", a("direction", ArgDirection), a("index", ArgInt)),
	cmd("drop_keyframe_on_timeline", a("direction", ArgDirection), a("index", ArgInt)),
	cmd("end_drag_and_drop_keyframe"),
	cmd("begin_drag_keyframe_duration", a("direction", ArgDirection), a("index", ArgInt)),
	cmd("update_drag_keyframe_duration", a("deltaMillis", ArgInt)),
	cmd("end_drag_keyframe_duration"),
	cmd("begin_nudge_keyframe", a("direction", ArgDirection), a("index", ArgInt)),
	cmd("update_nudge_keyframe", a("displacement", ArgVec2), a("bothAxis", ArgBool)),
	cmd("end_nudge_keyframe"),
	cmd("begin_nudge_hitbox", a("name", ArgString)),
	cmd("update_nudge_hitbox", a("displacement", ArgVec2), a("bothAxis", ArgBool)),
	cmd("end_nudge_hitbox"),
	cmd("begin_resize_hitbox", a("name", ArgString), a("axis", ArgResizeAxis)),
	cmd("update_resize_hitbox", a("displacement", ArgVec2), a("preserveAspectRatio", ArgBool)),
	cmd("end_resize_hitbox"),
	cmd("begin_rename_animation", a("animationName", ArgString)),
	cmd("end_rename_animation", a("newName", ArgString)),
	cmd("begin_rename_hitbox", a("hitboxName", ArgString)),
	cmd("end_rename_hitbox", a("newName", ArgString)),
	cmd("cancel_rename"),
}

var commands = func() map[string]Command {
	m := make(map[string]Command, len(commandList))
	for _, c := range commandList {
		if _, dup := m[c.Name]; dup {
			panic("gateway: duplicate command " + c.Name)
		}
		m[c.Name] = c
	}
	return m
}()

// Commands lists the engine command surface sorted by name.
func Commands() []Command {
	out := append([]Command(nil), commandList...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func LookupCommand(name string) (Command, bool) {
	c, ok := commands[name]
	return c, ok
}

// Invoke checks args against the command's signature and issues it. Argument
// values are normalized to their wire types (int64, float64, string, bool,
// []string, [2]float64 or nil).
func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (*Call, error) {
	req, err := NewRequest(name, args)
	if err != nil {
		return nil, err
	}
	return g.Issue(ctx, req), nil
}

// NewRequest builds a checked request for a known command.
func NewRequest(name string, args map[string]any) (Request, error) {
	c, ok := commands[name]
	if !ok {
		return Request{}, UnknownActionError{Action: name}
	}
	req := Request{Command: name}
	if len(c.Args) > 0 {
		req.Args = make(map[string]any, len(c.Args))
	}
	for _, a := range c.Args {
		raw, present := args[a.Name]
		if !present && a.Kind != ArgOptVec2 {
			return Request{}, ArgError{Command: name, Arg: a.Name, Reason: "missing"}
		}
		v, err := normalize(a.Kind, raw)
		if err != nil {
			return Request{}, ArgError{Command: name, Arg: a.Name, Reason: err.Error()}
		}
		req.Args[a.Name] = v
	}
	for k := range args {
		if !c.has(k) {
			return Request{}, ArgError{Command: name, Arg: k, Reason: "unexpected"}
		}
	}
	return req, nil
}

func (c Command) has(name string) bool {
	for _, arg := range c.Args {
		if arg.Name == name {
			return true
		}
	}
	return false
}

func normalize(kind ArgKind, v any) (any, error) {
	switch kind {
	case ArgString:
		return asString(v)
	case ArgStrings:
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, fmt.Errorf("expected a list of strings, got %T", v)
		}
		out := make([]string, rv.Len())
		for i := range out {
			s, err := asString(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case ArgBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", v)
		}
		return b, nil
	case ArgInt:
		f, err := asNumber(v)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("expected integer, got %v", f)
		}
		return int64(f), nil
	case ArgNumber:
		return asNumber(v)
	case ArgVec2:
		return asVec2(v)
	case ArgOptVec2:
		if v == nil {
			return nil, nil
		}
		return asVec2(v)
	case ArgDirection:
		s, err := asString(v)
		if err != nil || !model.Direction(s).Valid() {
			return nil, fmt.Errorf("expected a direction, got %v", v)
		}
		return s, nil
	case ArgPreset:
		s, err := asString(v)
		if err != nil || model.DirectionPreset(s).Directions() == nil {
			return nil, fmt.Errorf("expected a direction preset, got %v", v)
		}
		return s, nil
	case ArgListMode:
		s, err := asString(v)
		if err != nil || (model.ListMode(s) != model.ListModeLinear && model.ListMode(s) != model.ListModeGrid4xN) {
			return nil, fmt.Errorf("expected a list mode, got %v", v)
		}
		return s, nil
	case ArgNudge, ArgBrowse:
		s, err := asString(v)
		switch s {
		case "Up", "Down", "Left", "Right":
		default:
			err = fmt.Errorf("expected Up, Down, Left or Right, got %v", v)
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	case ArgResizeAxis:
		s, err := asString(v)
		if err != nil || !model.ResizeAxis(s).Valid() {
			return nil, fmt.Errorf("expected a resize axis, got %v", v)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

func asString(v any) (string, error) {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.String {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return rv.String(), nil
}

func asNumber(v any) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("expected a finite number, got %v", f)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func asVec2(v any) ([2]float64, error) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != 2 {
		return [2]float64{}, fmt.Errorf("expected a 2-element vector, got %v", v)
	}
	var out [2]float64
	for i := range out {
		f, err := asNumber(rv.Index(i).Interface())
		if err != nil {
			return [2]float64{}, err
		}
		out[i] = f
	}
	return out, nil
}
