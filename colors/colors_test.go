package colors

import (
	"net/http"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = noColor }()

	assert.Equal(t, Green(http.StatusOK), Status(http.StatusOK))
	assert.Equal(t, Green(http.StatusNoContent), Status(http.StatusNoContent))
	assert.Equal(t, Red(http.StatusBadRequest), Status(http.StatusBadRequest))
	assert.Equal(t, Red(http.StatusInternalServerError), Status(http.StatusInternalServerError))
	assert.NotEqual(t, Status(http.StatusOK), Status(http.StatusNotFound))
}
