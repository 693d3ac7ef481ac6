package modules

// Const renders a fixed markup value, typically the alignment and monitor
// directives gluing the real modules together.
type Const struct {
	value string
}

func NewConst(value string) *Const { return &Const{value: value} }

func (c *Const) Output() (string, error) { return c.value, nil }

func (c *Const) HandleEvent(string) (bool, error) { return false, nil }
