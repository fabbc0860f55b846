package handler

import (
	"net/http"

	"darassa/pkg/middleware"
	"darassa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// requireRoles adapts middleware.RequireRoles to a single httprouter route.
func requireRoles(handle httprouter.Handle, roles ...model.Role) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle(w, r, ps)
		})
		middleware.RequireRoles(next, roles...).ServeHTTP(w, r)
	}
}
