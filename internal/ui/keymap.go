package ui

import tea "github.com/charmbracelet/bubbletea"

type KeyMap struct {
	Pause       tea.Key
	Strategy    tea.Key
	Redetect    tea.Key
	Clear       tea.Key
	Inspect     tea.Key
	Filter      tea.Key
	ClearFilter tea.Key
	Sort        tea.Key
	SortReverse tea.Key
	CopyRow     tea.Key
	Export      tea.Key
	Bell        tea.Key
	AppLogs     tea.Key
	Top         tea.Key
	Bottom      tea.Key
	Help        tea.Key
	Quit        tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause:       tea.Key{Type: tea.KeyRunes, Runes: []rune{' '}},
		Strategy:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'s'}},
		Redetect:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'r'}},
		Clear:       tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
		Inspect:     tea.Key{Type: tea.KeyEnter},
		Filter:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'f'}},
		ClearFilter: tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}},
		Sort:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'o'}},
		SortReverse: tea.Key{Type: tea.KeyRunes, Runes: []rune{'O'}},
		CopyRow:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'y'}},
		Export:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		Bell:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'b'}},
		AppLogs:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
		Top:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
		Bottom:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
		Help:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		Quit:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}
