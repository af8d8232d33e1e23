// Package http implements a small HTTP/1.0 style request server: one request
// line per TCP connection, prefix routed to a handler that picks a page
// template, rendered and written back with a Content-Length framed body.
package http

const (
	DefaultReadBufferSize   = 4096 // 4kB
	DefaultWriteBufferSize  = 4096 // 4kB
	DefaultQueueSize        = 1024
	DefaultReportBufferSize = 64
)

var (
	crlf                = "\r\n"
	contentLengthPrefix = "Content-Length: "
)
