package xir

import (
	"io"
	"os"

	"github.com/beevik/etree"

	"claw/internal/errors"
)

// Message is one diagnostic entry: a message and the source lines it refers
// to.
type Message struct {
	Text  string
	Lines []int
}

// Program owns one IR document and its lookup tables, and accumulates the
// diagnostics recorded against it.
type Program struct {
	doc  *etree.Document
	root *Node
	file string

	typeTable          *TypeTable
	globalSymbols      *SymbolTable
	globalDeclarations *DeclTable

	errs     []Message
	warnings []Message
}

// Load reads and wraps an IR document from a file.
func Load(path string) (*Program, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.NewInternalf("cannot read IR document %s: %v", path, err)
	}
	program, err := FromDocument(doc)
	if err != nil {
		return nil, err
	}
	program.file = path
	return program, nil
}

// Parse wraps an IR document held in memory.
func Parse(data []byte) (*Program, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.NewInternalf("cannot parse IR document: %v", err)
	}
	return FromDocument(doc)
}

// FromDocument wraps an already parsed document. The document must carry a
// program root with a type table, global symbols and global declarations.
func FromDocument(doc *etree.Document) (*Program, error) {
	root := Wrap(doc.Root())
	if root == nil || !root.Is(KindProgram) {
		return nil, errors.NewInternal("document has no program root")
	}
	typeTable := root.Child(KindTypeTable)
	globalSymbols := root.Child(KindGlobalSymbols)
	globalDeclarations := root.Child(KindGlobalDeclarations)
	if typeTable == nil || globalSymbols == nil || globalDeclarations == nil {
		return nil, errors.NewInternal(
			"program root has no type table, global symbols or global declarations")
	}
	return &Program{
		doc:                doc,
		root:               root,
		file:               root.Attr(AttrFile),
		typeTable:          NewTypeTable(typeTable),
		globalSymbols:      NewSymbolTable(globalSymbols),
		globalDeclarations: NewDeclTable(globalDeclarations),
	}, nil
}

// Root returns the program root node.
func (p *Program) Root() *Node { return p.root }

// File returns the source file the document was produced from, when known.
func (p *Program) File() string { return p.file }

// TypeTable returns the program's type table.
func (p *Program) TypeTable() *TypeTable { return p.typeTable }

// GlobalSymbols returns the global symbol table.
func (p *Program) GlobalSymbols() *SymbolTable { return p.globalSymbols }

// GlobalDeclarations returns the global declaration table.
func (p *Program) GlobalDeclarations() *DeclTable { return p.globalDeclarations }

// FunctionDefinitions returns every function definition in document order.
func (p *Program) FunctionDefinitions() []*FunctionDefinition {
	var defs []*FunctionDefinition
	for _, node := range FindAll(p.root, KindFunctionDefinition) {
		def, err := FunctionDefinitionOf(node)
		if err != nil {
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

// FunctionDefinition resolves a function name to its definition, or nil.
func (p *Program) FunctionDefinition(name string) *FunctionDefinition {
	for _, def := range p.FunctionDefinitions() {
		if def.Name().Value() == name {
			return def
		}
	}
	return nil
}

// Pragmas returns every pragma statement in document order.
func (p *Program) Pragmas() []*Node {
	return FindAll(p.root, KindPragma)
}

// AddError records an error diagnostic. Empty messages and entries without
// any line data are silently ignored.
func (p *Program) AddError(text string, lines ...int) {
	if msg, ok := newMessage(text, lines); ok {
		p.errs = append(p.errs, msg)
	}
}

// AddWarning records a warning diagnostic under the same filter as AddError.
func (p *Program) AddWarning(text string, lines ...int) {
	if msg, ok := newMessage(text, lines); ok {
		p.warnings = append(p.warnings, msg)
	}
}

func newMessage(text string, lines []int) (Message, bool) {
	if text == "" {
		return Message{}, false
	}
	var kept []int
	for _, line := range lines {
		if line > 0 {
			kept = append(kept, line)
		}
	}
	if len(kept) == 0 {
		return Message{}, false
	}
	return Message{Text: text, Lines: kept}, true
}

// Errors returns the recorded error diagnostics in order.
func (p *Program) Errors() []Message { return p.errs }

// Warnings returns the recorded warning diagnostics in order.
func (p *Program) Warnings() []Message { return p.warnings }

// WriteTo emits the document.
func (p *Program) WriteTo(w io.Writer) error {
	p.doc.Indent(2)
	_, err := p.doc.WriteTo(w)
	return err
}

// Bytes returns the serialized document.
func (p *Program) Bytes() ([]byte, error) {
	p.doc.Indent(2)
	return p.doc.WriteToBytes()
}

// Save writes the document to a file.
func (p *Program) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.WriteTo(f)
}
