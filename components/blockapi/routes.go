package blockapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Routes lists the patterns RegisterRoutes mounted.
type Routes struct {
	Fetch  string
	Render string
}

// RegisterRoutes mounts the fetch and render handlers under basePath.
func RegisterRoutes(mux Mux, basePath string, factory ScopeFactory, fns ...OptionFn) (Routes, error) {
	if mux == nil {
		return Routes{}, fmt.Errorf("blockapi: missing mux")
	}
	if factory == nil {
		return Routes{}, fmt.Errorf("blockapi: missing engine")
	}
	opts := NewOptions(fns...)
	routes := Routes{
		Fetch:  mountPath(basePath, opts.FetchPath),
		Render: mountPath(basePath, opts.RenderPath),
	}
	mux.Handle(routes.Fetch, FetchHandler(factory, fns...))
	mux.Handle(routes.Render, RenderHandler(factory, fns...))
	return routes, nil
}

func mountPath(basePath, routePath string) string {
	basePath = strings.TrimSpace(basePath)
	routePath = strings.TrimSpace(routePath)

	if routePath == "" {
		routePath = "/"
	}
	if !strings.HasPrefix(routePath, "/") {
		routePath = "/" + routePath
	}

	if basePath == "" || basePath == "/" {
		return routePath
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimRight(basePath, "/")
	return basePath + routePath
}
