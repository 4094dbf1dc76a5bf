// Package http provides the inbound HTTP API of the swiftgate gateway.
//
// Uploads arrive as multipart/form-data and are relayed part by part to the
// upstream object store while the request body is still being read. Downloads
// stream the upstream response straight into the client response.
//
// # Routes
//
//	GET  /healthz
//	GET  /files                    list recorded uploads (container, prefix, limit, cursor)
//	GET  /files/{id}               download from the default container
//	GET  /files/{container}/{id}   download (inline, name, If-None-Match)
//	POST /files                    upload into the default container
//	POST /files/{container}        upload (id overrides the generated object id)
//
// # Authentication
//
// Reads and writes are guarded separately. Each side takes a RequestVerifier,
// or nil for public access:
//
//	store := keybackend.NewMapSecretStore(map[string]string{
//	    "GATEWAYKEY": "secret",
//	})
//	verifier := swiftgate.NewSignatureVerifier(store)
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    ReadVerifier:  nil,      // public read
//	    WriteVerifier: verifier, // presigned writes only
//	    MaxUploadSize: 1 << 30,
//	}, service)
//	srv := &http.Server{Addr: ":8080", Handler: handler.Router()}
//
// # Errors
//
// Failures before any response byte is written are answered with a JSON
// ErrorResponse. An upstream error status on download is mirrored as is. A
// download that breaks after the headers went out aborts the connection so
// the client never sees a truncated body as complete.
package http
