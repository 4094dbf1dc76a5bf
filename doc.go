// Package swiftgate relays file uploads and downloads between inbound HTTP
// clients and an upstream Swift-style object storage service that uses token
// authentication.
//
// The relay never holds more than one chunk of a transfer in memory. Uploads
// are piped from the inbound multipart part into a chunked PUT; downloads are
// copied from the upstream GET into the inbound response and flushed chunk by
// chunk, so the slower side of a transfer paces the faster one. Conditional
// requests (If-None-Match / ETag), Content-Disposition for attachments and
// upstream error statuses are carried across.
//
// # Key Components
//
//   - Client: outbound connection pool and the relay operations
//   - Session: upstream account, default container and storage token
//   - GatewayService: Client plus Session plus the upload registry
//   - ObjectRegistry: interface for upload records (PostgreSQL, SQLite)
//
// # Transfers
//
// Every relay call runs one transfer with the lifecycle
//
//	Idle -> Streaming -> Draining -> Done
//
// or Failed from any non-terminal state. A transfer owns at most one upstream
// request and always closes its response body, on every exit path. Buffered
// Read and Write materialize the whole object and exist for callers that
// want a plain request/response contract.
//
// # Example Usage
//
//	client, err := swiftgate.NewClient(swiftgate.Options{BaseURL: "http://swift:8080"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(context.Background())
//
//	sess, _ := swiftgate.NewSession("AUTH_test", "documents")
//	if err := client.Authenticate(ctx, sess, "test:tester", "testing"); err != nil {
//	    log.Fatal(err)
//	}
//
//	id, err := client.Write(ctx, sess, swiftgate.StoredObject{
//	    Content:     []byte("hello"),
//	    Filename:    "hello.txt",
//	    ContentType: "text/plain",
//	}, "")
//
//	obj, err := client.Read(ctx, sess, id, "")
//
// See the http package for the inbound REST API and the database package for
// registry backends.
package swiftgate
