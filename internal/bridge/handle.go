package bridge

// Handle names one automation component: "<program>.<suffix>", for example
// "Sap2000v15.cPropMaterial". It is immutable.
type Handle struct {
	program   string
	component string
}

// NewHandle builds the handle for component under program.
func NewHandle(program, component string) Handle {
	return Handle{program: program, component: component}
}

func (h Handle) Program() string   { return h.program }
func (h Handle) Component() string { return h.component }

// String returns the dotted form sent to the endpoint.
func (h Handle) String() string {
	if h.program == "" {
		return h.component
	}
	return h.program + "." + h.component
}

// IsZero reports whether h names nothing.
func (h Handle) IsZero() bool {
	return h.component == ""
}
