package gui

import "fmt"

// Item is an entry in an [ItemList].
type Item struct {
	Label    string
	Values   []string
	Index    int
	OnChange func(index int)
}

// Value returns the selected value text, or "" if the item has no values.
func (it *Item) Value() string {
	if it.Index < 0 || it.Index >= len(it.Values) {
		return ""
	}
	return it.Values[it.Index]
}

// ItemList is a list of labelled items whose values change with left and
// right keys.
type ItemList struct {
	title    string
	items    []*Item
	selected int
	onEnter  func(index int)
}

// NewItemList returns an empty list with the given title.
func NewItemList(title string) *ItemList {
	return &ItemList{title: title}
}

// Reset removes all items.
func (l *ItemList) Reset() {
	l.items = nil
	l.selected = 0
	l.onEnter = nil
}

// Add appends an item and returns it.
func (l *ItemList) Add(label string, values []string, index int, onChange func(int)) *Item {
	it := &Item{Label: label, Values: values, Index: index, OnChange: onChange}
	l.items = append(l.items, it)
	return it
}

// SetEnterCallback sets the callback for OK on the selected item.
func (l *ItemList) SetEnterCallback(cb func(index int)) {
	l.onEnter = cb
}

// Selected returns the index of the selected item.
func (l *ItemList) Selected() int {
	return l.selected
}

// Items returns the items in display order.
func (l *ItemList) Items() []*Item {
	return l.items
}

// Render implements [View].
func (l *ItemList) Render() []string {
	out := []string{l.title}
	for i, it := range l.items {
		cursor := " "
		if i == l.selected {
			cursor = ">"
		}
		value := it.Value()
		if len(it.Values) > 1 {
			value = "< " + value + " >"
		}
		out = append(out, fmt.Sprintf("%s %-18s %s", cursor, it.Label, value))
	}
	return out
}

// Input implements [View].
func (l *ItemList) Input(ev InputEvent) bool {
	if len(l.items) == 0 {
		return false
	}
	it := l.items[l.selected]

	switch ev.Key {
	case KeyUp:
		if l.selected > 0 {
			l.selected--
		}
		return true
	case KeyDown:
		if l.selected < len(l.items)-1 {
			l.selected++
		}
		return true
	case KeyLeft:
		if it.Index > 0 {
			it.Index--
			if it.OnChange != nil {
				it.OnChange(it.Index)
			}
		}
		return true
	case KeyRight:
		if it.Index < len(it.Values)-1 {
			it.Index++
			if it.OnChange != nil {
				it.OnChange(it.Index)
			}
		}
		return true
	case KeyOK:
		if l.onEnter != nil {
			l.onEnter(l.selected)
			return true
		}
	}
	return false
}
