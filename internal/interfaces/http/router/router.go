// Package router assembles the gin engine: global middleware, the versioned
// API route table and the operational endpoints.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is anything that can mount routes on a gin group.
// DomainGroup is the only implementation in the server, tests add their own.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version> behind the API middleware
// chain (rate limiting, body limits). Operational endpoints live on the
// engine root and skip that chain.
type Router struct {
	engine     *gin.Engine
	version    string
	chain      []gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.version = version }
}

func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.chain = append(r.chain, mw...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts everything registered so far. Call it once.
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.version, r.chain...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// DomainGroup is the route table of one resource, e.g. /group-buys. Routes
// are recorded first and mounted by RegisterRoutes, so a group can be built
// declaratively in routes.go before the engine exists.
type DomainGroup struct {
	name     string
	prefix   string
	chain    []gin.HandlerFunc
	routes   []route
	children []*DomainGroup
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (g *DomainGroup) Name() string   { return g.name }
func (g *DomainGroup) Prefix() string { return g.prefix }

// Use adds middleware in front of every route of g and its children.
func (g *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	g.chain = append(g.chain, mw...)
	return g
}

func (g *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{method, path, handlers})
	return g
}

func (g *DomainGroup) GET(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodGet, path, h...)
}

func (g *DomainGroup) POST(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodPost, path, h...)
}

func (g *DomainGroup) PUT(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodPut, path, h...)
}

func (g *DomainGroup) PATCH(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodPatch, path, h...)
}

func (g *DomainGroup) DELETE(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.Handle(http.MethodDelete, path, h...)
}

// Group returns a child group nested under g's prefix and middleware.
func (g *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

func (g *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	mounted := rg.Group(g.prefix, g.chain...)
	for _, rt := range g.routes {
		mounted.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, child := range g.children {
		child.RegisterRoutes(mounted)
	}
}
