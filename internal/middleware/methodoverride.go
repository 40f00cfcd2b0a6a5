package middleware

import (
	"net/http"
	"strings"
)

const overrideMemoryLimit = 32 << 20

// MethodOverride wraps the router so POST multipart requests carrying a
// _method=PUT form field are routed as PUT. HTML multipart forms cannot send
// PUT natively, so edit screens submit POST plus the override field. The
// rewrite must happen before routing, hence the outer handler instead of a
// gin middleware.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(overrideMemoryLimit); err == nil {
				if strings.EqualFold(r.PostFormValue("_method"), http.MethodPut) {
					r.Method = http.MethodPut
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
