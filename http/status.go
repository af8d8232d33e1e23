package http

import "strconv"

type Status uint16

const (
	StatusOK                 Status = 200 // RFC 7231, 6.3.1
	StatusNotFound           Status = 404 // RFC 7231, 6.5.4
	StatusServiceUnavailable Status = 503 // RFC 7231, 6.6.4
)

var (
	unknownStatusLine = "HTTP/1.1 500 INTERNAL SERVER ERROR"

	statusLines = map[Status]string{
		StatusOK:                 "HTTP/1.1 200 OK",
		StatusNotFound:           "HTTP/1.1 404 NOT FOUND",
		StatusServiceUnavailable: "HTTP/1.1 503 SERVICE UNAVAILABLE",
	}
)

// Line returns the status line written at the start of a response.
func (status Status) Line() string {
	if line, ok := statusLines[status]; ok {
		return line
	}
	return unknownStatusLine
}

func (status Status) String() string {
	return strconv.Itoa(int(status))
}
