// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/danielhkuo/anonchat/middleware"
)

// Page serves a plain-text placeholder for a frontend route. The real pages
// are rendered by the frontend; these exist so the page guard has something
// to protect and redirect between.
func Page(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if sess, ok := middleware.SessionFromContext(r.Context()); ok {
			fmt.Fprintf(w, "AnonChat | %s (signed in as %s)\n", title, sess.Username)
			return
		}
		fmt.Fprintf(w, "AnonChat | %s\n", title)
	}
}
