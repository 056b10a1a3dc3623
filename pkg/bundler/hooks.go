package bundler

// Listener is called when a hook fires.
type Listener func()

type tap struct {
	name string
	fn   Listener
}

// Hook is a synchronous notification point. Listeners run in the order they
// were tapped.
type Hook struct {
	name string
	taps []tap
}

// NewHook returns a hook with no listeners.
func NewHook(name string) *Hook {
	return &Hook{name: name}
}

// Name returns the hook's name.
func (h *Hook) Name() string { return h.name }

// Tap registers fn under name.
func (h *Hook) Tap(name string, fn Listener) {
	h.taps = append(h.taps, tap{name: name, fn: fn})
}

// Taps returns the registered listener names in call order.
func (h *Hook) Taps() []string {
	names := make([]string, len(h.taps))
	for i, t := range h.taps {
		names[i] = t.name
	}
	return names
}

// Call runs every listener.
func (h *Hook) Call() {
	for _, t := range h.taps {
		t.fn()
	}
}

// Hooks are the lifecycle points of a Compiler.
type Hooks struct {
	// Run fires before the module graph is built.
	Run *Hook
	// Emit fires once every chunk is assembled, before bundles are generated
	// and written.
	Emit *Hook
	// Done fires after the bundles are written.
	Done *Hook
}

func newHooks() Hooks {
	return Hooks{
		Run:  NewHook("run"),
		Emit: NewHook("emit"),
		Done: NewHook("done"),
	}
}

// Plugin registers listeners on a compiler.
type Plugin interface {
	Apply(c *Compiler)
}

// PluginFunc adapts a function to a Plugin.
type PluginFunc func(c *Compiler)

func (f PluginFunc) Apply(c *Compiler) { f(c) }
