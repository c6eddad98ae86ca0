package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dappstore.GO/service/search"
)

// Query parameters that are not search options.
const (
	ParamText = "text"
	ParamQ    = "q"
)

// SearchRequest decodes the free text and search options of c. GET requests
// read the query string; other methods read a JSON object body, with the
// query string filling in what the body leaves out.
func SearchRequest(c echo.Context) (string, search.Options, error) {
	raw := map[string]any{}
	for k, v := range c.QueryParams() {
		raw[k] = v
	}
	if c.Request().Method != http.MethodGet && c.Request().ContentLength != 0 {
		var body map[string]any
		err := json.NewDecoder(c.Request().Body).Decode(&body)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", search.Options{}, BadRequest("api.search", err)
		}
		for k, v := range body {
			raw[k] = v
		}
	}
	text := first(raw[ParamText])
	if text == "" {
		text = first(raw[ParamQ])
	}
	delete(raw, ParamText)
	delete(raw, ParamQ)

	opts, err := search.DecodeOptions(raw)
	if err != nil {
		return "", opts, BadRequest("api.search", err)
	}
	return strings.TrimSpace(text), opts, nil
}

func first(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}
