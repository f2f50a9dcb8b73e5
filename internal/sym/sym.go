// Package sym implements the scoped, namespaced symbol table named in
// spec.md §3: a stack of scopes, each holding three independent namespaces
// (ordinary names, struct/union/enum tags, and goto labels), searched
// outward from the innermost open scope.
//
// The namespace split and insertion-order iteration are grounded on
// lang/yparse/symtab.go's SymbolTable/FuncScope pair, generalized from
// wut4's flat global-table-plus-one-function-scope design to a genuine
// nested scope stack, since spec.md requires block scoping (if/while/for
// bodies, compound statements) that wut4's YAPL dialect does not have.
package sym

import (
	"github.com/luchiel/smallc/internal/types"
)

// Namespace selects which of a scope's three independent symbol spaces a
// lookup or insertion targets, per spec.md §3.
type Namespace int

const (
	NAME Namespace = iota
	TAG
	LABEL
)

// Kind distinguishes what a NAME-namespace symbol denotes.
type Kind int

const (
	KindVar Kind = iota
	KindFunc
	KindConst
	KindTypedef
	KindEnumConst
)

// Storage distinguishes where a variable's storage lives, used by codegen
// to pick an addressing mode.
type Storage int

const (
	StorageGlobal Storage = iota
	StorageStatic
	StorageLocal
	StorageParam
)

// Symbol is one NAME-namespace entry.
type Symbol struct {
	Name    string
	Kind    Kind
	Type    *types.Type
	Storage Storage

	// Local/param addressing, filled in by the parser/codegen as locals are
	// allocated (spec.md §4.3 frame layout): byte offset from EBP.
	FrameOffset int

	// Global/static data and function symbols carry an emitted label name.
	Label string

	// KindConst and KindEnumConst carry their compile-time value directly.
	ConstValue int64

	Defined bool // false for a forward "extern" declaration not yet defined
}

// Label is a LABEL-namespace entry: a goto target. Comparison between
// labels is by Id alone once assigned — see the REDESIGN FLAG resolution in
// SPEC_FULL.md §4: the Name field exists only for emission, never for
// equality.
type Label struct {
	Name    string
	Id      int
	Defined bool
}

func (l *Label) Equal(o *Label) bool { return l.Id == o.Id }

type namedEntry struct {
	name string
	sym  *Symbol
}

type tagEntry struct {
	name string
	typ  *types.Type
}

type labelEntry struct {
	name string
	lbl  *Label
}

// scope holds the three namespaces for one nesting level, each as an
// insertion-ordered slice plus a map for O(1) lookup — grounded on the
// teacher's map-based SymbolTable.Globals, extended with an order slice
// since spec.md requires insertion order to be observable (e.g. for struct
// field iteration order and debug dumps).
type scope struct {
	names  []namedEntry
	nameIx map[string]int

	tags  []tagEntry
	tagIx map[string]int

	labels  []labelEntry
	labelIx map[string]int
}

func newScope() *scope {
	return &scope{
		nameIx:  make(map[string]int),
		tagIx:   make(map[string]int),
		labelIx: make(map[string]int),
	}
}

// MaxDepth bounds scope nesting per spec.md §3 ("scope stack depth ≤255").
const MaxDepth = 255

// Table is the compiler's single symbol table: a stack of scopes plus the
// global label-id counter.
type Table struct {
	scopes   []*scope
	nextLabelID int
}

// New creates a table with one open scope (file scope) and installs the
// built-in types and the built-in printf declaration, per spec.md §3.
func New() *Table {
	t := &Table{}
	t.PushScope()
	t.installBuiltins()
	return t
}

func (t *Table) installBuiltins() {
	printfType := types.NewFunction(types.IntType, []*types.Type{types.NewPointer(types.CharType)}, true)
	// Defined is left false: printf has no body in this translation unit,
	// so codegen treats call sites the same as any other extern function
	// (an indirect call through the import table's _printf slot).
	t.Define(NAME, "printf", &Symbol{
		Name: "printf", Kind: KindFunc, Type: printfType,
		Storage: StorageGlobal, Label: "_printf", Defined: false,
	})
}

// PushScope opens a new nested scope. Returns false if MaxDepth would be
// exceeded.
func (t *Table) PushScope() bool {
	if len(t.scopes) >= MaxDepth {
		return false
	}
	t.scopes = append(t.scopes, newScope())
	return true
}

// PopScope closes the innermost scope, discarding everything declared in it.
func (t *Table) PopScope() {
	if len(t.scopes) == 0 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth reports the number of currently open scopes.
func (t *Table) Depth() int { return len(t.scopes) }

func (t *Table) top() *scope { return t.scopes[len(t.scopes)-1] }

// Define installs a symbol in the innermost open scope's given namespace.
// It reports false without modifying the table if the name is already
// defined in that same scope and namespace (spec.md §4.2 redeclaration
// check — shadowing an outer scope is always permitted).
func (t *Table) Define(ns Namespace, name string, value interface{}) bool {
	s := t.top()
	switch ns {
	case NAME:
		if _, ok := s.nameIx[name]; ok {
			return false
		}
		s.nameIx[name] = len(s.names)
		s.names = append(s.names, namedEntry{name: name, sym: value.(*Symbol)})
	case TAG:
		if _, ok := s.tagIx[name]; ok {
			return false
		}
		s.tagIx[name] = len(s.tags)
		s.tags = append(s.tags, tagEntry{name: name, typ: value.(*types.Type)})
	case LABEL:
		if _, ok := s.labelIx[name]; ok {
			return false
		}
		lbl := value.(*Label)
		s.labelIx[name] = len(s.labels)
		s.labels = append(s.labels, labelEntry{name: name, lbl: lbl})
	default:
		return false
	}
	return true
}

// Lookup searches outward from the innermost scope to file scope and
// returns the first match, per spec.md §3's "lookup walks outward through
// open scopes" rule.
func (t *Table) Lookup(ns Namespace, name string) (interface{}, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		s := t.scopes[i]
		switch ns {
		case NAME:
			if ix, ok := s.nameIx[name]; ok {
				return s.names[ix].sym, true
			}
		case TAG:
			if ix, ok := s.tagIx[name]; ok {
				return s.tags[ix].typ, true
			}
		case LABEL:
			if ix, ok := s.labelIx[name]; ok {
				return s.labels[ix].lbl, true
			}
		}
	}
	return nil, false
}

// LookupLocal searches only the innermost open scope.
func (t *Table) LookupLocal(ns Namespace, name string) (interface{}, bool) {
	s := t.top()
	switch ns {
	case NAME:
		if ix, ok := s.nameIx[name]; ok {
			return s.names[ix].sym, true
		}
	case TAG:
		if ix, ok := s.tagIx[name]; ok {
			return s.tags[ix].typ, true
		}
	case LABEL:
		if ix, ok := s.labelIx[name]; ok {
			return s.labels[ix].lbl, true
		}
	}
	return nil, false
}

// LookupSymbol is a typed convenience wrapper over Lookup(NAME, ...).
func (t *Table) LookupSymbol(name string) (*Symbol, bool) {
	v, ok := t.Lookup(NAME, name)
	if !ok {
		return nil, false
	}
	return v.(*Symbol), true
}

// LookupTag is a typed convenience wrapper over Lookup(TAG, ...).
func (t *Table) LookupTag(name string) (*types.Type, bool) {
	v, ok := t.Lookup(TAG, name)
	if !ok {
		return nil, false
	}
	return v.(*types.Type), true
}

// NewLabel allocates a fresh, uniquely-numbered Label, taking the next id
// (starting at 1) at the time of the call. The parser calls it when a label
// statement is defined.
func (t *Table) NewLabel(name string) *Label {
	t.nextLabelID++
	return &Label{Name: name, Id: t.nextLabelID}
}

// FileScopeNames returns the NAME-namespace symbols declared in file scope,
// in declaration order — used by codegen to emit globals and by the CLI
// debug dump.
func (t *Table) FileScopeNames() []*Symbol {
	if len(t.scopes) == 0 {
		return nil
	}
	fileScope := t.scopes[0]
	out := make([]*Symbol, 0, len(fileScope.names))
	for _, e := range fileScope.names {
		out = append(out, e.sym)
	}
	return out
}
