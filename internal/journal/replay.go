package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"tiger-client/internal/gateway"
	"tiger-client/internal/patch"
	"tiger-client/internal/store"
)

// Replay rebuilds the tree a session ended with. Entries are applied in
// request order; violations and entries that failed live are skipped, since
// they left the tree untouched.
func Replay(ctx context.Context, log Log, session string) (*store.Store, error) {
	entries, err := log.Entries(ctx, session)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("journal: no entries for session %q", session)
	}
	st := store.New()
	if err := ReplayInto(st, entries); err != nil {
		return nil, err
	}
	return st, nil
}

// ReplayInto applies entries to st.
func ReplayInto(st *store.Store, entries []Entry) error {
	live := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == KindViolation || e.Error != "" {
			continue
		}
		live = append(live, e)
	}
	sort.SliceStable(live, func(i, j int) bool { return live[i].Seq < live[j].Seq })

	for _, e := range live {
		switch e.Kind {
		case KindReplace:
			if err := st.ReplaceJSON(e.Payload); err != nil {
				return fmt.Errorf("journal: replay #%d %s: %w", e.Seq, e.Command, err)
			}
		case KindReplacePatch:
			var resp gateway.Response
			if err := json.Unmarshal(e.Payload, &resp); err != nil {
				return fmt.Errorf("journal: replay #%d %s: decode response: %w", e.Seq, e.Command, err)
			}
			if err := st.ReplaceAndApply(resp.State, resp.Patch); err != nil {
				return fmt.Errorf("journal: replay #%d %s: %w", e.Seq, e.Command, err)
			}
		case KindPatch:
			var p patch.Patch
			if len(e.Payload) > 0 {
				if err := json.Unmarshal(e.Payload, &p); err != nil {
					return fmt.Errorf("journal: replay #%d %s: decode patch: %w", e.Seq, e.Command, err)
				}
			}
			if err := st.Apply(p); err != nil {
				return fmt.Errorf("journal: replay #%d %s: %w", e.Seq, e.Command, err)
			}
		}
	}
	return nil
}
