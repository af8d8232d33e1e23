package http

import (
	"fmt"
	"strconv"
	"strings"
)

// Handler answers a matched route with a response, given the positional
// arguments that followed the route prefix in the path.
type Handler interface {
	Serve(args []string) (Response, error)
}

type HandlerFunc func(args []string) (Response, error)

func (fn HandlerFunc) Serve(args []string) (Response, error) {
	return fn(args)
}

type Route struct {
	Method   Method
	Prefixes []string
	Handler  Handler
}

// NewRoute binds handler to every prefix. Handler failures are prefixed
// with the first prefix so the error page names the route that failed.
func NewRoute(method Method, handler Handler, prefixes ...string) Route {
	if len(prefixes) == 0 {
		panic("http: route must have one or more prefixes")
	}

	name := prefixes[0]
	return Route{
		Method:   method,
		Prefixes: prefixes,
		Handler: HandlerFunc(func(args []string) (Response, error) {
			res, err := handler.Serve(args)
			if err != nil {
				return res, fmt.Errorf("error handling route `%s`: %w", name, err)
			}
			return res, nil
		}),
	}
}

// NotFoundHandler produces the response for paths no route matched.
type NotFoundHandler func() Response

// ErrorHandler turns a failed connection into the page reported back to
// the dispatch loop.
type ErrorHandler func(err error) ErrorPage

var DefaultNotFoundHandler NotFoundHandler = func() Response {
	return Response{Status: StatusNotFound, Page: Page{Template: "404.html"}}
}

var DefaultErrorHandler ErrorHandler = func(err error) ErrorPage {
	return ErrorPage{Template: "error.html", Message: err.Error()}
}

// Args names the positional arguments of a route so parse failures can
// point at the offending argument.
type Args struct {
	route  string
	names  []string
	values []string
}

// BindArgs checks that exactly one value was given per name.
func BindArgs(prefix string, values []string, names ...string) (Args, error) {
	if len(values) != len(names) {
		return Args{}, fmt.Errorf("incorrect number of arguments given (expected %d, got %d)", len(names), len(values))
	}

	placeholders := make([]string, len(names))
	for i, name := range names {
		placeholders[i] = "{" + name + "}"
	}

	return Args{
		route:  prefix + "/" + strings.Join(placeholders, "/"),
		names:  names,
		values: values,
	}, nil
}

func (args Args) String(i int) string {
	return args.values[i]
}

func (args Args) Int(i int) (int, error) {
	n, err := strconv.Atoi(args.values[i])
	if err != nil {
		return 0, args.ParseError(i, err)
	}
	return n, nil
}

func (args Args) ParseError(i int, cause error) error {
	return fmt.Errorf("failed to parse argument `%s` in route `%s`: %w", args.names[i], args.route, cause)
}
