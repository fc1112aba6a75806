package remote

import (
	"encoding/json"

	"github.com/golang/glog"

	"tiger-client/internal/texture"
)

type pathPayload struct {
	Path string `json:"path"`
}

// TextureRouter returns an OnEvent handler feeding invalidation events into
// the two side tables. Other events are logged and dropped.
func TextureRouter(textures, templates *texture.Table) func(Event) {
	return func(ev Event) {
		var tb *texture.Table
		switch ev.Name {
		case EventInvalidateTexture:
			tb = textures
		case EventInvalidateTemplate:
			tb = templates
		default:
			glog.V(1).Infof("remote: ignoring event %q", ev.Name)
			return
		}
		var p pathPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Path == "" {
			glog.Errorf("remote: bad %s payload %s", ev.Name, ev.Payload)
			return
		}
		if tb != nil {
			tb.Invalidate(p.Path)
		}
	}
}
