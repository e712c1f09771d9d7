// Package sapmodel exposes typed wrappers over the structural-analysis
// program's automation interface.
//
// Every wrapper method maps its arguments one to one onto the catalog
// contract of the same name and returns the program's status code, where 0
// means success. Output parameters are *bridge.Cell values; pass nil for an
// output you do not need. Optional trailing inputs are bridge.Opt fields of a
// per-method options struct, and unset fields take the catalog default.
//
// v14 and v15 share all wrapper code. Methods that exist only in v15 fail
// with bridge.ErrUnknownMethod on a v14 model.
package sapmodel

import (
	"context"
	"fmt"

	"github.com/oriys/oapi/internal/bridge"
	"github.com/oriys/oapi/internal/catalog"
	"github.com/oriys/oapi/internal/transport"
)

// Version selects the API generation.
type Version string

const (
	V14 Version = "v14"
	V15 Version = "v15"
)

// ParseVersion accepts "v14", "14", "v15" and "15".
func ParseVersion(s string) (Version, error) {
	switch s {
	case "v14", "14":
		return V14, nil
	case "v15", "15":
		return V15, nil
	}
	return "", fmt.Errorf("unknown API version %q", s)
}

// Catalog returns the builtin contracts for v.
func (v Version) Catalog() (*catalog.Catalog, error) {
	return catalog.Builtin(string(v))
}

// Open binds the wrappers for version v to ep. Options are passed to the
// underlying bridge.
func Open(ep transport.Endpoint, v Version, opts ...bridge.Option) (*SapObject, error) {
	cat, err := v.Catalog()
	if err != nil {
		return nil, err
	}
	return OpenWithCatalog(ep, v, cat, opts...), nil
}

// OpenWithCatalog is Open with an explicit catalog, such as a builtin one
// merged with a site-specific file.
func OpenWithCatalog(ep transport.Endpoint, v Version, cat *catalog.Catalog, opts ...bridge.Option) *SapObject {
	b := bridge.New(ep, cat, opts...)
	return &SapObject{component: component{b: b, h: b.Handle("SapObject")}, version: v}
}

// component is the shared core of every wrapper: a bridge and the handle
// of one automation component.
type component struct {
	b *bridge.Bridge
	h bridge.Handle
}

func (c component) call(ctx context.Context, method string, args ...bridge.Arg) (int, error) {
	return c.b.Call(ctx, c.h, method, args...)
}

func (c component) sub(name string) component {
	return component{b: c.b, h: c.b.Handle(name)}
}

// Handle returns the component handle the wrapper dispatches to.
func (c component) Handle() bridge.Handle { return c.h }
