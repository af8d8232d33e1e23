// Package routes holds the example route set served by the werver binary.
package routes

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/freekieb7/werver/dice"
	"github.com/freekieb7/werver/http"
	"github.com/freekieb7/werver/telemetry"
)

var logger = telemetry.Logger("github.com/freekieb7/werver/routes")

const (
	HomeTemplate     = "meow.html"
	RollTemplate     = "roll.html"
	RandomTemplate   = "random.html"
	NotFoundTemplate = "404.html"
	ErrorTemplate    = "error.html"

	// missingTemplate is never shipped; rendering it exercises the
	// render failure path.
	missingTemplate = "nonexistent.html"
)

// Build registers the example routes in match order.
func Build() *http.RouteTable {
	router := http.NewRouter()
	router.Middleware = append(router.Middleware, http.RecoverMiddleware(), http.LogMiddleware())

	router.GETFunc(Home, "/", "/home")
	router.GETFunc(Error, "/error")
	router.GETFunc(Sleep, "/sleep")
	router.GETFunc(Roll, "/roll")
	router.GETFunc(Random, "/random")

	return router.Build()
}

func NotFound() http.Response {
	return http.NewResponse(http.StatusOK, http.NewPage(NotFoundTemplate, nil))
}

func OnError(err error) http.ErrorPage {
	return http.ErrorPage{Template: ErrorTemplate, Message: err.Error()}
}

func Home(args []string) (http.Response, error) {
	if _, err := http.BindArgs("/home", args); err != nil {
		return http.Response{}, err
	}
	return http.NewResponse(http.StatusOK, http.NewPage(HomeTemplate, nil)), nil
}

func Error(args []string) (http.Response, error) {
	if _, err := http.BindArgs("/error", args); err != nil {
		return http.Response{}, err
	}
	return http.NewResponse(http.StatusOK, http.NewPage(missingTemplate, nil)), nil
}

func Sleep(args []string) (http.Response, error) {
	bound, err := http.BindArgs("/sleep", args, "secs")
	if err != nil {
		return http.Response{}, err
	}

	secs, err := strconv.ParseUint(bound.String(0), 10, 32)
	if err != nil {
		return http.Response{}, bound.ParseError(0, err)
	}

	logger.Debug("sleeping", "secs", secs)
	time.Sleep(time.Duration(secs) * time.Second)

	return http.NewResponse(http.StatusOK, http.NewPage(missingTemplate, nil)), nil
}

func Roll(args []string) (http.Response, error) {
	bound, err := http.BindArgs("/roll", args, "dice")
	if err != nil {
		return http.Response{}, err
	}

	roll, err := dice.Parse(bound.String(0))
	if err != nil {
		return http.Response{}, bound.ParseError(0, err)
	}

	result := roll.Roll(context.Background())
	return http.NewResponse(http.StatusOK, http.NewPage(RollTemplate, map[string]string{
		"dice":   roll.String(),
		"result": strconv.Itoa(result),
	})), nil
}

func Random(args []string) (http.Response, error) {
	bound, err := http.BindArgs("/random", args, "low", "high")
	if err != nil {
		return http.Response{}, err
	}

	var bounds [2]int64
	for i := range bounds {
		bounds[i], err = strconv.ParseInt(bound.String(i), 10, 32)
		if err != nil {
			return http.Response{}, bound.ParseError(i, err)
		}
	}

	low, high := bounds[0], bounds[1]
	if low > high {
		return http.Response{}, fmt.Errorf("empty range: low %d is greater than high %d", low, high)
	}

	result := low + rand.Int64N(high-low+1)
	return http.NewResponse(http.StatusOK, http.NewPage(RandomTemplate, map[string]string{
		"result": strconv.FormatInt(result, 10),
		"low":    strconv.FormatInt(low, 10),
		"high":   strconv.FormatInt(high, 10),
	})), nil
}
