package http

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

type Method uint8

const (
	MethodGet Method = iota + 1
)

func (method Method) String() string {
	switch method {
	case MethodGet:
		return "GET"
	}
	return "UNKNOWN"
}

// ParseMethod is case insensitive; GET is the only supported method.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, true
	}
	return 0, false
}

type Request struct {
	Method   Method
	Path     string
	Protocol string
}

// ReadRequestLine consumes lines from the reader until a blank line or EOF
// and returns the first one. Header lines are read and discarded.
func ReadRequestLine(reader *bufio.Reader) (string, error) {
	var requestLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", TransportError(err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if requestLine == "" {
			requestLine = line
		}

		if err != nil {
			break
		}
	}

	if requestLine == "" {
		return "", MalformedRequestError("Empty incoming TCP stream")
	}

	return requestLine, nil
}

// ParseRequestLine splits "<METHOD> <PATH> <PROTOCOL>" on single spaces.
func ParseRequestLine(line string) (Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return Request{}, MalformedRequestError("Malformed request line")
	}

	method, ok := ParseMethod(parts[0])
	if !ok {
		return Request{}, MalformedRequestError("Unknown request type: " + parts[0])
	}

	return Request{
		Method:   method,
		Path:     parts[1],
		Protocol: parts[2],
	}, nil
}
