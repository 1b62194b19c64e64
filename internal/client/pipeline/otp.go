package pipeline

import "strings"

// OTPInput collects a 6-digit code through six independent single-character
// slots, the same contract as the six input boxes in the portal UI: entering
// a digit fills the active slot and advances, backspace clears the active
// slot or retreats when it is already empty.
type OTPInput struct {
	slots  [6]byte
	active int
}

// Enter records a digit in the active slot and advances. Non-digit input is
// rejected and reported false.
func (o *OTPInput) Enter(ch byte) bool {
	if ch < '0' || ch > '9' {
		return false
	}
	o.slots[o.active] = ch
	if o.active < len(o.slots)-1 {
		o.active++
	}
	return true
}

// Backspace clears the active slot, or moves back one slot when the active
// one is already empty.
func (o *OTPInput) Backspace() {
	if o.slots[o.active] == 0 && o.active > 0 {
		o.active--
	}
	o.slots[o.active] = 0
}

// Code returns the digits entered so far, in slot order.
func (o *OTPInput) Code() string {
	var b strings.Builder
	for _, s := range o.slots {
		if s != 0 {
			b.WriteByte(s)
		}
	}
	return b.String()
}

// Complete reports whether all six slots are filled.
func (o *OTPInput) Complete() bool {
	for _, s := range o.slots {
		if s == 0 {
			return false
		}
	}
	return true
}
