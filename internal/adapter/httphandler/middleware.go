package httphandler

import "net/http"

// CustomerIDHeader carries the opaque customer identifier. Identity
// verification belongs to the excluded presentation layer, the core
// accepts the header as-is.
const CustomerIDHeader = "X-Customer-ID"

func AllowJSON(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

func RequireCustomer(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(CustomerIDHeader) == "" {
			http.Error(w, "missing customer id", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hf)
}

func customerID(r *http.Request) string {
	return r.Header.Get(CustomerIDHeader)
}
