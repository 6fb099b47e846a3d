package httpkit

import "net/http"

// MountUnder routes a subtree at prefix, installing the module's
// middleware chain before the mount closure registers endpoints
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
