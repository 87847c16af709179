package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeInput_PasteFromFirstBox(t *testing.T) {
	var c CodeInput
	c.Paste(" 482913 ")

	assert.Equal(t, [CodeLength]string{"4", "8", "2", "9", "1", "3"}, c.Boxes())
	assert.Equal(t, "482913", c.Code())
	assert.Equal(t, 5, c.Focused())
}

func TestCodeInput_PasteKeepsDigitsFromFocusedBox(t *testing.T) {
	var c CodeInput
	c.Type(0, "1")
	c.Paste("ab-98 7654")

	assert.Equal(t, "198765", c.Code())
	assert.Equal(t, 5, c.Focused())

	var empty CodeInput
	empty.Paste("abc")
	assert.Empty(t, empty.Code())
	assert.Equal(t, 0, empty.Focused())
}

func TestCodeInput_TypeAdvances(t *testing.T) {
	var c CodeInput
	for i := 0; i < CodeLength-1; i++ {
		c.Type(i, "7")
		assert.Equal(t, i+1, c.Focused())
	}

	c.Type(5, "2")
	assert.Equal(t, 5, c.Focused(), "last box keeps focus")
	assert.Equal(t, "777772", c.Code())

	c.Focus(2)
	c.Type(2, "")
	assert.Equal(t, 2, c.Focused(), "clearing a box does not advance")
}

func TestCodeInput_TypeSpreadsLongValue(t *testing.T) {
	var c CodeInput
	c.Type(3, "4567")

	assert.Equal(t, [CodeLength]string{"", "", "", "4", "5", "6"}, c.Boxes())
	assert.Equal(t, 5, c.Focused())
}

func TestCodeInput_Backspace(t *testing.T) {
	var c CodeInput
	c.Paste("1234")
	assert.Equal(t, 4, c.Focused())

	c.KeyDown(4, KeyBackspace)
	assert.Equal(t, "123", c.Code())
	assert.Equal(t, 3, c.Focused())

	c.KeyDown(2, KeyBackspace)
	assert.Equal(t, "12", c.Code(), "filled box is cleared in place")
	assert.Equal(t, 3, c.Focused())

	c.KeyDown(0, KeyBackspace)
	c.KeyDown(0, KeyBackspace)
	assert.Equal(t, "2", c.Code())
	assert.Equal(t, 3, c.Focused())
}

func TestCodeInput_DeleteAndArrows(t *testing.T) {
	var c CodeInput
	c.Paste("123456")

	c.KeyDown(5, KeyDelete)
	c.KeyDown(5, KeyDelete)
	assert.Equal(t, "12345", c.Code(), "delete on an empty box does nothing")

	c.KeyDown(5, KeyArrowLeft)
	assert.Equal(t, 4, c.Focused())
	c.KeyDown(0, KeyArrowLeft)
	assert.Equal(t, 4, c.Focused())
	c.KeyDown(4, KeyArrowRight)
	assert.Equal(t, 5, c.Focused())
	c.KeyDown(5, KeyArrowRight)
	assert.Equal(t, 5, c.Focused())

	c.Reset()
	assert.Equal(t, CodeInput{}, c)
}
