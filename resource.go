package memocache

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/unkn0wn-root/memocache/internal/extract"
)

const ignoreMissingSuffix = ":ignore_missing"

// resourceWrap describes how a cached value's external resources are
// captured for later release. Either the value itself is an io.Closer
// (wrapValue) or closers are extracted from dotted paths inside it.
type resourceWrap struct {
	wrapValue bool
	paths     []string
}

func (w resourceWrap) configured() bool {
	return w.wrapValue || len(w.paths) > 0
}

// acquire collects the resource handles owned by v. On a partial failure the
// handles collected so far are released before the error is returned, so a
// failed generation never leaks.
func (w resourceWrap) acquire(v any) (io.Closer, error) {
	if !w.configured() {
		return nil, nil
	}

	if w.wrapValue {
		c, ok := v.(io.Closer)
		if !ok {
			return nil, fmt.Errorf("cached value of type %T does not implement io.Closer", v)
		}
		return c, nil
	}

	var closers multiCloser
	for _, path := range w.paths {
		path = strings.TrimSpace(path)
		ignoreMissing := strings.HasSuffix(path, ignoreMissingSuffix)
		path = strings.TrimSuffix(path, ignoreMissingSuffix)

		raw, err := extract.FromObj(v, path)
		if err != nil {
			if ignoreMissing {
				continue
			}
			_ = closers.Close()
			return nil, err
		}
		c, ok := raw.(io.Closer)
		if !ok {
			_ = closers.Close()
			return nil, fmt.Errorf("resource at %q has type %T which does not implement io.Closer", path, raw)
		}
		closers = append(closers, c)
	}
	if len(closers) == 0 {
		return nil, nil
	}
	return closers, nil
}

// multiCloser releases handles in reverse acquisition order.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
