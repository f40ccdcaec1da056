package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of every view. List navigation is left to [list.Model].
type keyMap struct {
	pick      key.Binding
	start     key.Binding
	cancel    key.Binding
	unmatched key.Binding
	rerun     key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		pick:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick source")),
		start:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "sync")),
		cancel:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		unmatched: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "only unmatched")),
		rerun:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync again")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) pickHelp() []key.Binding    { return []key.Binding{k.pick, k.quit} }
func (k keyMap) confirmHelp() []key.Binding { return []key.Binding{k.start, k.cancel, k.quit} }
func (k keyMap) resultHelp() []key.Binding  { return []key.Binding{k.unmatched, k.rerun, k.quit} }
