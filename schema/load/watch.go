package load

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/graphmap/schema"
)

// Watch reloads a schema file whenever it changes and delivers the rebuilt
// registry (or the reload error) to fn. The initial load is delivered
// before Watch returns; the watcher then runs until ctx is canceled.
//
// The file's directory is watched rather than the file itself, so editors
// that replace the file on save (rename + create) keep being observed.
func Watch(ctx context.Context, path string, fn func(*schema.Registry, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return err
	}

	fn(reload(abs))

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				fn(reload(abs))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fn(nil, err)
			}
		}
	}()
	return nil
}

func reload(path string) (*schema.Registry, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Registry()
}
