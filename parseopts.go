package mathtree

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	limitopt int
	regopt   struct{ r *Registry }
	funcsopt []Op
	nofnsopt struct{}
	checkopt struct{}
)

// parsectx holds general data for parsing. It is also a ParseOption.
type parsectx struct {
	// reg is the registry to parse with, or nil for the default.
	reg *Registry
	// ops are ops to add to or replace in reg.
	ops []Op
	// nofuncs removes the named functions of reg.
	nofuncs bool
	// limit is the number of runes to parse if limited is set.
	limit   int
	limited bool
	// check verifies the links of the parsed tree.
	check bool
	// preset marks a context built by ParsingPreset.
	preset bool
}

// registry resolves the registry to use for parsing.
func (p *parsectx) registry() (*Registry, error) {
	r := p.reg
	if r == nil {
		r = defaultRegistry
	}
	if p.nofuncs {
		r = r.withoutFuncs()
	}
	if len(p.ops) != 0 {
		return r.With(p.ops...)
	}
	return r, nil
}

// Limit tells the parser to read only the first n runes of the input, as if
// the rest had not been typed yet.
func Limit(n int) ParseOption {
	return limitopt(n)
}

func (o limitopt) parseOption(p parsectx) parsectx {
	p.limit = int(o)
	p.limited = o >= 0
	return p
}

// WithRegistry sets the registry of operators and functions for parsing.
// Other options that set functions apply on top of it.
func WithRegistry(r *Registry) ParseOption {
	return regopt{r}
}

func (o regopt) parseOption(p parsectx) parsectx {
	p.reg = o.r
	return p
}

// ParseFunc adds or replaces an op for parsing. To disable parsing a function,
// pass an op with its token and a nil Eval; its keyword then parses as a
// variable.
func ParseFunc(op Op) ParseOption {
	return funcsopt{op}
}

// ParseFuncs adds or replaces a group of ops for parsing.
func ParseFuncs(ops ...Op) ParseOption {
	return funcsopt(ops)
}

func (o funcsopt) parseOption(p parsectx) parsectx {
	// Always make a copy.
	p.ops = append(p.ops[:len(p.ops):len(p.ops)], o...)
	return p
}

// DisableDefaultFuncs disables all named functions of the registry during
// parsing. Their names will be parsed as variables instead. Functions added by
// ParseFunc or ParseFuncs are still parsed.
func DisableDefaultFuncs() ParseOption {
	return nofnsopt{}
}

func (nofnsopt) parseOption(p parsectx) parsectx {
	p.nofuncs = true
	return p
}

// CheckTree tells the parser to verify the links of every tree it builds.
// Parse returns a *TreeError if the check fails.
func CheckTree() ParseOption {
	return checkopt{}
}

func (checkopt) parseOption(p parsectx) parsectx {
	p.check = true
	return p
}

// ParsingPreset creates a parsing preset that may be more efficient when using
// the same non-default parsing options for many calls to Parse, because the
// registry is built once. A preset panics when it would change any option from
// the default, but it is safe to apply other options after a preset.
// ParsingPreset panics if the options describe an invalid registry.
func ParsingPreset(opts ...ParseOption) ParseOption {
	var p parsectx
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	r, err := p.registry()
	if err != nil {
		panic(err)
	}
	p.reg = r
	p.ops = nil
	p.nofuncs = false
	p.preset = true
	return &p
}

func (o *parsectx) parseOption(p parsectx) parsectx {
	if p.reg != nil || p.ops != nil || p.nofuncs || p.limited || p.check || p.preset {
		panic("mathtree: preset applied to non-default parse config")
	}
	return *o
}
