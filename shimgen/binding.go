package shimgen

// Value is the value of a [Binding]: a [Literal], a [List] or a [Cond].
type Value interface{ isValue() }

type (
	// Literal is substituted verbatim for a placeholder.
	Literal string
	// List drives a repeated block, emitting its body once per element.
	// Placeholders in the body resolve against the element first.
	List []Bindings
	// Cond decides a conditional block not named by a flag.
	Cond bool
)

func (Literal) isValue() {}
func (List) isValue()    {}
func (Cond) isValue()    {}

// Binding associates a name with a [Value].
type Binding struct {
	Name  string
	Value Value
}

// Bindings is an ordered binding table.
type Bindings []Binding

// Lookup returns the [Value] bound to name.
func (b Bindings) Lookup(name string) (Value, bool) {
	for _, v := range b {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// validate checks that names are well-formed and unique, including within every [List].
func (b Bindings) validate() error {
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		if !isName(v.Name) {
			return &TemplateError{Directive: v.Name, Reason: "invalid binding name"}
		}
		if _, ok := seen[v.Name]; ok {
			return &TemplateError{Directive: v.Name, Reason: "duplicate binding"}
		}
		seen[v.Name] = struct{}{}

		switch val := v.Value.(type) {
		case Literal, Cond:
		case List:
			for _, e := range val {
				if err := e.validate(); err != nil {
					return err
				}
			}
		default:
			return &TemplateError{Directive: v.Name, Reason: "binding holds no value"}
		}
	}
	return nil
}
