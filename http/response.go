package http

import (
	"bufio"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Templates is the store pages are read from.
type Templates interface {
	ReadFile(path string) ([]byte, error)
}

// Page is a template path plus the named values substituted into it.
type Page struct {
	Template string
	Args     map[string]string
}

func NewPage(template string, args map[string]string) Page {
	return Page{Template: template, Args: args}
}

// Render reads the page template and substitutes every {key} in it.
func (page Page) Render(templates Templates) (string, error) {
	content, err := templates.ReadFile(page.Template)
	if err != nil {
		return "", err
	}
	return Substitute(string(content), page.Args), nil
}

// Substitute replaces each literal "{key}" in content with its value. Keys
// are applied in sorted order and replacement is not recursive; tokens with
// no matching key are left as they are.
func Substitute(content string, args map[string]string) string {
	for _, key := range slices.Sorted(maps.Keys(args)) {
		content = strings.ReplaceAll(content, "{"+key+"}", args[key])
	}
	return content
}

// ErrorPage is a template that renders a single {error} argument. It is
// the value reported by workers and replayed by the dispatch loop, so it
// must stay comparable.
type ErrorPage struct {
	Template string
	Message  string
}

func (page ErrorPage) Page() Page {
	return Page{
		Template: page.Template,
		Args:     map[string]string{"error": page.Message},
	}
}

func (page ErrorPage) Response() Response {
	return Response{Status: StatusOK, Page: page.Page()}
}

type Response struct {
	Status Status
	Page   Page
}

func NewResponse(status Status, page Page) Response {
	return Response{Status: status, Page: page}
}

// WriteResponse writes "<status-line>\r\nContent-Length: N\r\n\r\n<body>"
// and flushes.
func WriteResponse(writer *bufio.Writer, status Status, body string) error {
	var lengthBuf [20]byte

	writer.WriteString(status.Line())
	writer.WriteString(crlf)
	writer.WriteString(contentLengthPrefix)
	writer.Write(strconv.AppendInt(lengthBuf[:0], int64(len(body)), 10))
	writer.WriteString(crlf)
	writer.WriteString(crlf)
	writer.WriteString(body)

	return writer.Flush()
}
