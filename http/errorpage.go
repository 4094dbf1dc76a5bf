package http

import (
	"fmt"
	"html"
	"net/http"
)

// unknownRoutePage is served for paths outside the relay's routes. The
// request method and path are echoed back escaped.
const unknownRoutePage = `<!doctype html>
<html>
<head><title>swiftgate: no such route</title></head>
<body>
<h1>No route for %s %s</h1>
<p>Files are relayed under <code>/files</code>:</p>
<ul>
<li><code>POST /files[/{container}]</code> uploads multipart file parts</li>
<li><code>GET /files[/{container}]/{id}</code> streams one object</li>
<li><code>GET /files</code> lists recorded uploads</li>
</ul>
<p>Liveness is reported at <code>/healthz</code>.</p>
</body>
</html>
`

func writeUnknownRoute(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = fmt.Fprintf(w, unknownRoutePage, html.EscapeString(r.Method), html.EscapeString(r.URL.Path))
}
