// Package theme provides the light/dark theme collaborator: a current
// value plus change subscriptions. Subscriptions are scoped resources —
// Subscribe returns the release function.
package theme

import "sync"

// Recognised theme names.
const (
	Light = "light"
	Dark  = "dark"
)

// Source is what theme consumers depend on.
type Source interface {
	// Current returns the active theme name.
	Current() string
	// Subscribe registers a change callback and returns its unsubscribe
	// function. Calling unsubscribe more than once is harmless.
	Subscribe(fn func(name string)) (unsubscribe func())
}

// Notifier is an in-process Source. Set fans the new name out to every
// live subscriber synchronously.
type Notifier struct {
	mu      sync.Mutex
	current string
	subs    map[int]func(string)
	nextID  int
}

// NewNotifier creates a Notifier with the given initial theme. An empty
// initial value defaults to light.
func NewNotifier(initial string) *Notifier {
	if initial == "" {
		initial = Light
	}
	return &Notifier{current: initial, subs: make(map[int]func(string))}
}

func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Set changes the theme and notifies subscribers. Setting the same value
// again does not notify.
func (n *Notifier) Set(name string) {
	n.mu.Lock()
	if name == n.current {
		n.mu.Unlock()
		return
	}
	n.current = name
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(name)
	}
}

// Toggle flips between light and dark and returns the new name.
func (n *Notifier) Toggle() string {
	next := Dark
	if n.Current() == Dark {
		next = Light
	}
	n.Set(next)
	return next
}

func (n *Notifier) Subscribe(fn func(string)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
		})
	}
}
