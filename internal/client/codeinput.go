package client

import (
	"strings"
	"unicode"
)

// CodeLength is the number of boxes in the one-time code input
const CodeLength = 6

// Key is a navigation key pressed inside a code box
type Key string

const (
	KeyBackspace  Key = "Backspace"
	KeyDelete     Key = "Delete"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
)

// CodeInput models the six single-character boxes of the verification code
// and which box has focus. The zero value is empty with focus on box 0.
type CodeInput struct {
	boxes [CodeLength]string
	focus int
}

// Type handles a change in box index. A multi-character value is spread
// over the following boxes.
func (c *CodeInput) Type(index int, value string) {
	if index < 0 || index >= CodeLength {
		return
	}

	chars := []rune(value)
	if len(chars) > 1 {
		for i, ch := range chars {
			if index+i < CodeLength {
				c.boxes[index+i] = string(ch)
			}
		}
		c.focus = min(index+len(chars), CodeLength-1)
		return
	}

	c.boxes[index] = value
	if value != "" && index < CodeLength-1 {
		c.focus = index + 1
	}
}

// KeyDown handles deletion and arrow navigation in box index
func (c *CodeInput) KeyDown(index int, key Key) {
	if index < 0 || index >= CodeLength {
		return
	}

	switch key {
	case KeyBackspace, KeyDelete:
		if c.boxes[index] != "" {
			c.boxes[index] = ""
			return
		}
		if key == KeyBackspace && index > 0 {
			c.boxes[index-1] = ""
			c.focus = index - 1
		}
	case KeyArrowLeft:
		if index > 0 {
			c.focus = index - 1
		}
	case KeyArrowRight:
		if index < CodeLength-1 {
			c.focus = index + 1
		}
	}
}

// Paste keeps the digits of text and writes them from the focused box on
func (c *CodeInput) Paste(text string) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(text))
	if digits == "" {
		return
	}

	start := c.focus
	n := 0
	for _, d := range digits {
		if start+n >= CodeLength {
			break
		}
		c.boxes[start+n] = string(d)
		n++
	}
	c.focus = min(start+n, CodeLength-1)
}

// Focus moves focus to box index
func (c *CodeInput) Focus(index int) {
	if index >= 0 && index < CodeLength {
		c.focus = index
	}
}

// Focused returns the box that has focus
func (c *CodeInput) Focused() int { return c.focus }

// Boxes returns the box contents
func (c *CodeInput) Boxes() [CodeLength]string { return c.boxes }

// Code joins the boxes
func (c *CodeInput) Code() string { return strings.Join(c.boxes[:], "") }

// Reset empties every box and focuses the first
func (c *CodeInput) Reset() { *c = CodeInput{} }
