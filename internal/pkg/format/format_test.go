package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCOP(t *testing.T) {
	out := COP(1500000)
	assert.True(t, strings.HasPrefix(out, "$ "))
	assert.Contains(t, out, "500")
	assert.NotEqual(t, "$ 1500000", out, "amount should be grouped")
}

func TestCOPString(t *testing.T) {
	assert.Equal(t, COP(250000), COPString("250000"))
	assert.Equal(t, COP(250000), COPString(" 250.000 "))
	assert.Equal(t, "abc", COPString("abc"))
}

func TestDate(t *testing.T) {
	d := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "5 de marzo de 2024", Date(d))
	assert.Equal(t, "", Date(time.Time{}))
}
