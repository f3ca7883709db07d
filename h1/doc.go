// Package h1 implements the HTTP/1.1 engine: request serialization over a
// pooled connection, chunked and Content-Length response body framing,
// and the exactly-once retry on a connection the server closed while it
// was idle in the pool.
//
// Grounded on badu-http's transfer_body_reader.go / utils_chunks.go (chunk
// line parsing and hex length decoding) and src/http/tport/persist_conn.go
// (shouldRetryRequest / isReused / canceled posture), re-expressed against
// htreq.Request/Response and pool.Lease rather than net/http's own Request
// and persistConn types.
package h1
