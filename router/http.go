package router

import (
	"io"
	"net/http"
	"strconv"
)

// ServeHTTP serves every request through Dispatch.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			d.logger.Warn("router.read_body_failed", "path", r.URL.Path, "error", err.Error())
			http.Error(w, "cannot read request body", http.StatusBadRequest)
			return
		}
		body = b
	}

	resp := d.Dispatch(r.Context(), r.Method, r.URL.Path, body)
	WriteResponse(w, resp)
}

// WriteResponse writes resp to w.
func WriteResponse(w http.ResponseWriter, resp Response) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
