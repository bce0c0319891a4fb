package colors

import (
	"net/http"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
)

// Status colors an http status code, red for client and server errors
func Status(code int) string {
	if code >= http.StatusBadRequest {
		return Red(code)
	}
	return Green(code)
}
