// Package nav names the screens the flows redirect between.
package nav

import "sync"

// Route is a screen of the application.
type Route string

const (
	Login     Route = "/login"
	Dashboard Route = "/dashboard"
)

// Navigator receives redirect requests.
type Navigator interface {
	Navigate(to Route)
}

// Func adapts a function to Navigator.
type Func func(to Route)

// Navigate implements Navigator.
func (f Func) Navigate(to Route) { f(to) }

// Recorder remembers every redirect. The zero value is ready to use.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

// Navigate implements Navigator.
func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

// Last returns the most recent route, or "" when none was requested.
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// Routes returns all requested routes in order.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}
