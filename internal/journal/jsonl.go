package journal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

type jsonlLog struct {
	path string

	mu sync.Mutex
	f  *os.File
}

func openJSONL(path string) (*jsonlLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &jsonlLog{path: path, f: f}, nil
}

func (l *jsonlLog) Append(_ context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return os.ErrClosed
	}
	_, err = l.f.Write(append(line, '\n'))
	return err
}

func (l *jsonlLog) read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	out := []Entry{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", l.path, lineNo, err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// ulids sort in creation order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *jsonlLog) Entries(_ context.Context, session string) ([]Entry, error) {
	all, err := l.read()
	if err != nil {
		return nil, err
	}
	session = strings.TrimSpace(session)
	out := []Entry{}
	for _, e := range all {
		if e.Session == session {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *jsonlLog) Sessions(_ context.Context) ([]SessionInfo, error) {
	all, err := l.read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	out := []SessionInfo{}
	for _, e := range all {
		i, ok := idx[e.Session]
		if !ok {
			idx[e.Session] = len(out)
			out = append(out, SessionInfo{ID: e.Session, First: e.At, Last: e.At})
			i = len(out) - 1
		}
		s := &out[i]
		s.Entries++
		if e.At.Before(s.First) {
			s.First = e.At
		}
		if e.At.After(s.Last) {
			s.Last = e.At
		}
	}
	return out, nil
}

func (l *jsonlLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
