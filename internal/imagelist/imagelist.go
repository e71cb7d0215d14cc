// Package imagelist manages the ordered image URL slots of a product being edited.
//
// A List grows a trailing empty slot when its last slot is filled and drops the
// trailing empty slot when a slot is cleared, so the form always offers exactly
// one blank input until MaxSlots is reached.
package imagelist

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxSlots is the most image slots a product may carry.
const MaxSlots = 5

var ErrIndexOutOfRange = errors.New("image slot index out of range")

// List is an ordered sequence of image URL slots. The zero value is an empty list.
// A List is not safe for concurrent use.
type List struct {
	slots []string
}

// New returns a list pre-populated with urls, truncated to MaxSlots.
func New(urls ...string) *List {
	l := &List{}
	l.load(urls)
	return l
}

func (l *List) load(urls []string) {
	if len(urls) > MaxSlots {
		urls = urls[:MaxSlots]
	}
	l.slots = append(make([]string, 0, len(urls)), urls...)
}

// Len returns the number of slots, including empty ones.
func (l *List) Len() int {
	return len(l.slots)
}

// Slots returns a copy of every slot in order.
func (l *List) Slots() []string {
	return append([]string{}, l.slots...)
}

// At returns the value at index, or "" if index is out of range.
func (l *List) At(index int) string {
	if index < 0 || index >= len(l.slots) {
		return ""
	}
	return l.slots[index]
}

// SetAt replaces the value at index and then restores the slot invariants.
func (l *List) SetAt(index int, value string) error {
	if index < 0 || index >= len(l.slots) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(l.slots))
	}
	l.slots[index] = value
	l.growAfterSet(index, value)
	l.shrinkAfterSet(value)
	return nil
}

// growAfterSet opens a new blank slot when the last slot was just filled.
func (l *List) growAfterSet(index int, value string) {
	if value == "" || index != len(l.slots)-1 || len(l.slots) >= MaxSlots {
		return
	}
	l.slots = append(l.slots, "")
}

// shrinkAfterSet drops the trailing blank slot after a slot was cleared.
func (l *List) shrinkAfterSet(value string) {
	if value != "" || len(l.slots) <= 1 || l.slots[len(l.slots)-1] != "" {
		return
	}
	l.slots = l.slots[:len(l.slots)-1]
}

// Append adds an empty slot at the end. It reports false and leaves the list
// untouched when the list already holds MaxSlots slots.
func (l *List) Append() bool {
	if len(l.slots) >= MaxSlots {
		return false
	}
	l.slots = append(l.slots, "")
	return true
}

// RemoveLast drops the final slot whether or not it is empty.
func (l *List) RemoveLast() {
	if len(l.slots) == 0 {
		return
	}
	l.slots = l.slots[:len(l.slots)-1]
}

// ToSubmission returns the non-empty slots in order.
func (l *List) ToSubmission() []string {
	return Submission(l.slots)
}

// Submission filters empty strings out of urls, keeping relative order.
func Submission(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (l *List) MarshalJSON() ([]byte, error) {
	if l.slots == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.slots)
}

func (l *List) UnmarshalJSON(data []byte) error {
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return fmt.Errorf("failed to decode image list: %w", err)
	}
	l.load(urls)
	return nil
}
