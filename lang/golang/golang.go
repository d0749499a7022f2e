// Package golang is the Go frontend: it extracts a codeir.CodeIR using
// go/parser and go/ast directly rather than tree-sitter — the standard
// library already gives Go source a precise, no-recovery-needed parse,
// so there is nothing tree-sitter's tolerant walking buys here.
package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"
	"time"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/viant/codegraph/codeir"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/registry"
)

func init() {
	registry.Register("go", []string{".go"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

// Frontend implements parser.CodeParser for Go.
type Frontend struct {
	cfg cgparser.ParserConfig
	cgparser.MetricsRecorder
}

// New constructs a Go frontend with the given configuration.
func New(cfg cgparser.ParserConfig) *Frontend {
	return &Frontend{cfg: cfg}
}

func (f *Frontend) Language() string          { return "go" }
func (f *Frontend) FileExtensions() []string  { return []string{".go"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	return strings.EqualFold(pathExt(path), ".go")
}

func (f *Frontend) DiscoverFiles(dir string) ([]string, error) {
	return cgparser.DiscoverFiles(dir, f.FileExtensions(), f.cfg.ExcludeDirs)
}

func (f *Frontend) ParseFile(path string, store *graphstore.Store) (cgparser.FileInfo, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		f.RecordFailure()
		return cgparser.FileInfo{}, &cgparser.IOError{Path: path, Err: err}
	}
	if f.cfg.MaxFileSize > 0 && int64(len(data)) > f.cfg.MaxFileSize {
		f.RecordFailure()
		return cgparser.FileInfo{}, &cgparser.FileTooLargeError{Path: path, Size: int64(len(data)), Max: f.cfg.MaxFileSize}
	}

	info, err := f.ParseSource(string(data), path, store)
	if err != nil {
		f.RecordFailure()
		return info, err
	}
	info.ByteCount = len(data)
	info.ParseTime = time.Since(start)
	f.RecordSuccess(info.ParseTime, info.EntityCount(), len(info.Imports))
	return info, nil
}

func (f *Frontend) ParseSource(source, filePath string, store *graphstore.Store) (cgparser.FileInfo, error) {
	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, filePath, source, parser.ParseComments)
	if err != nil {
		return cgparser.FileInfo{}, &cgparser.ParseError{Kind: cgparser.ParseErrorSyntax, Path: filePath, Msg: err.Error()}
	}

	ir := extract(fset, astFile, filePath, f.cfg)
	return cgparser.IRToGraph(ir, store, filePath)
}

func (f *Frontend) ParseFiles(paths []string, store *graphstore.Store) (cgparser.ProjectInfo, error) {
	return cgparser.ParseFilesSequential(paths, func(path string) (cgparser.FileInfo, error) {
		return f.ParseFile(path, store)
	}), nil
}

func (f *Frontend) ParseDirectory(dir string, store *graphstore.Store) (cgparser.ProjectInfo, error) {
	paths, err := f.DiscoverFiles(dir)
	if err != nil {
		return cgparser.ProjectInfo{}, err
	}
	return f.ParseFiles(paths, store)
}

func pathExt(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx:]
}

// extract walks the parsed file and builds the CodeIR: package-level
// functions, struct/interface declarations, imports, and call sites
// keyed by qualified caller name.
func extract(fset *token.FileSet, file *ast.File, filePath string, cfg cgparser.ParserConfig) *codeir.CodeIR {
	ir := &codeir.CodeIR{
		Module: &codeir.ModuleEntity{
			Name:      file.Name.Name,
			Path:      filePath,
			Language:  "go",
			LineCount: fset.Position(file.End()).Line,
			Doc:       docText(file.Doc),
		},
	}

	methodsByReceiver := map[string][]codeir.FunctionEntity{}
	var freeFunctions []codeir.FunctionEntity
	currentFunc := ""

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			fn := functionEntity(fset, d)
			if cfg.SkipTests && strings.HasPrefix(d.Name.Name, "Test") {
				continue
			}
			if cfg.SkipPrivate && fn.Visibility == codeir.VisibilityPrivate {
				continue
			}
			if recv := receiverType(d); recv != "" {
				fn.ParentClass = recv
				methodsByReceiver[recv] = append(methodsByReceiver[recv], fn)
			} else {
				freeFunctions = append(freeFunctions, fn)
			}

		case *ast.GenDecl:
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				switch t := ts.Type.(type) {
				case *ast.StructType:
					ir.Classes = append(ir.Classes, structEntity(fset, ts, t))
				case *ast.InterfaceType:
					ir.Traits = append(ir.Traits, interfaceEntity(fset, ts, t))
				}
			}
		}
	}

	// astutil.Imports groups the file's import specs by declaration block
	// the same way goimports does, rather than walking GenDecl/ImportSpec
	// by hand; it also normalizes a spec's Name/Path the same way across
	// single and grouped import statements.
	for _, group := range astutil.Imports(fset, file) {
		for _, imp := range group {
			path := strings.Trim(imp.Path.Value, `"`)
			rel := codeir.ImportRelation{Importer: file.Name.Name, Imported: path}
			if imp.Name != nil {
				rel.Alias = imp.Name.Name
			}
			ir.Imports = append(ir.Imports, rel)
		}
	}

	for recv, methods := range methodsByReceiver {
		attached := false
		for i := range ir.Classes {
			if ir.Classes[i].Name == recv {
				ir.Classes[i].Methods = append(ir.Classes[i].Methods, methods...)
				attached = true
				break
			}
		}
		if !attached {
			// Receiver type declared with no matching struct seen
			// (e.g. a type alias); surface methods as free functions
			// qualified by receiver so they aren't silently dropped.
			for _, m := range methods {
				m.Name = recv + "." + m.Name
				freeFunctions = append(freeFunctions, m)
			}
		}
	}
	ir.Functions = append(ir.Functions, freeFunctions...)
	for _, class := range ir.Classes {
		ir.Functions = append(ir.Functions, class.Methods...)
	}

	qualifiedName := func(d *ast.FuncDecl) string {
		if recv := receiverType(d); recv != "" {
			return recv + "." + d.Name.Name
		}
		return d.Name.Name
	}

	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		currentFunc = qualifiedName(fd)
		recvVar, recvType := receiverVarAndType(fd)
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			callee, isMethod := calleeName(call)
			if callee == "" {
				return true
			}
			if recvVar != "" && strings.HasPrefix(callee, recvVar+".") {
				// Calling another method on the same receiver (e.g.
				// w.format() inside a method on *Widget): we know the
				// concrete receiver type without needing full type
				// inference, so qualify by it instead of the local
				// variable name.
				callee = recvType + strings.TrimPrefix(callee, recvVar)
			}
			pos := fset.Position(call.Pos())
			ir.Calls = append(ir.Calls, codeir.CallRelation{
				Caller:   currentFunc,
				Callee:   callee,
				Line:     pos.Line,
				IsMethod: isMethod,
			})
			return true
		})
	}

	return ir
}

// receiverVarAndType returns the receiver's local variable name (e.g.
// "w") and its type name (e.g. "Widget"), or ("", "") for a free function.
func receiverVarAndType(d *ast.FuncDecl) (string, string) {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return "", ""
	}
	field := d.Recv.List[0]
	if len(field.Names) == 0 {
		return "", receiverType(d)
	}
	return field.Names[0].Name, receiverType(d)
}

func receiverType(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return ""
	}
	switch t := d.Recv.List[0].Type.(type) {
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	case *ast.Ident:
		return t.Name
	}
	return ""
}

func functionEntity(fset *token.FileSet, d *ast.FuncDecl) codeir.FunctionEntity {
	fn := codeir.FunctionEntity{
		Name:       d.Name.Name,
		Visibility: visibilityOf(d.Name.Name),
		LineStart:  fset.Position(d.Pos()).Line,
		LineEnd:    fset.Position(d.End()).Line,
		IsTest:     strings.HasPrefix(d.Name.Name, "Test") || strings.HasPrefix(d.Name.Name, "Benchmark"),
		Doc:        docText(d.Doc),
	}
	if d.Type.Params != nil {
		for _, field := range d.Type.Params.List {
			typ := typeToString(field.Type)
			if len(field.Names) == 0 {
				fn.Parameters = append(fn.Parameters, codeir.Parameter{Type: typ})
				continue
			}
			for _, name := range field.Names {
				fn.Parameters = append(fn.Parameters, codeir.Parameter{Name: name.Name, Type: typ})
			}
		}
	}
	if d.Type.Results != nil && len(d.Type.Results.List) > 0 {
		fn.ReturnType = typeToString(d.Type.Results.List[0].Type)
	}
	fn.Signature = signatureOf(d)
	return fn
}

func signatureOf(d *ast.FuncDecl) string {
	var b strings.Builder
	b.WriteString("func ")
	if recv := receiverType(d); recv != "" {
		b.WriteString("(" + recv + ") ")
	}
	b.WriteString(d.Name.Name)
	b.WriteString("(")
	if d.Type.Params != nil {
		for i, field := range d.Type.Params.List {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(typeToString(field.Type))
		}
	}
	b.WriteString(")")
	return b.String()
}

func structEntity(fset *token.FileSet, ts *ast.TypeSpec, st *ast.StructType) codeir.ClassEntity {
	class := codeir.ClassEntity{
		Name:       ts.Name.Name,
		Visibility: visibilityOf(ts.Name.Name),
		LineStart:  fset.Position(ts.Pos()).Line,
		LineEnd:    fset.Position(ts.End()).Line,
		Doc:        docText(ts.Doc),
	}
	if st.Fields != nil {
		for _, field := range st.Fields.List {
			typ := typeToString(field.Type)
			if len(field.Names) == 0 {
				// Embedded field: also counts as implicit composition.
				class.BaseClasses = append(class.BaseClasses, typ)
				continue
			}
			for _, name := range field.Names {
				class.Fields = append(class.Fields, codeir.Field{
					Name:           name.Name,
					TypeAnnotation: typ,
					Visibility:     visibilityOf(name.Name),
				})
			}
		}
	}
	return class
}

func interfaceEntity(fset *token.FileSet, ts *ast.TypeSpec, it *ast.InterfaceType) codeir.TraitEntity {
	trait := codeir.TraitEntity{
		Name:      ts.Name.Name,
		LineStart: fset.Position(ts.Pos()).Line,
		LineEnd:   fset.Position(ts.End()).Line,
		Doc:       docText(ts.Doc),
	}
	if it.Methods != nil {
		for _, m := range it.Methods.List {
			if len(m.Names) == 0 {
				continue
			}
			ft, ok := m.Type.(*ast.FuncType)
			if !ok {
				continue
			}
			fn := codeir.FunctionEntity{Name: m.Names[0].Name, Visibility: codeir.VisibilityPublic}
			if ft.Results != nil && len(ft.Results.List) > 0 {
				fn.ReturnType = typeToString(ft.Results.List[0].Type)
			}
			trait.Methods = append(trait.Methods, fn)
		}
	}
	return trait
}

func calleeName(call *ast.CallExpr) (name string, isMethod bool) {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name, false
	case *ast.SelectorExpr:
		if ident, ok := fn.X.(*ast.Ident); ok {
			return ident.Name + "." + fn.Sel.Name, true
		}
		return fn.Sel.Name, true
	}
	return "", false
}

func visibilityOf(name string) codeir.Visibility {
	if name == "" {
		return codeir.VisibilityPrivate
	}
	if ast.IsExported(name) {
		return codeir.VisibilityPublic
	}
	return codeir.VisibilityPrivate
}

func docText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	return strings.TrimSpace(cg.Text())
}

func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeToString(t.Elt)
		}
		return "[" + typeToString(t.Len) + "]" + typeToString(t.Elt)
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	case *ast.MapType:
		return "map[" + typeToString(t.Key) + "]" + typeToString(t.Value)
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.StructType:
		return "struct{}"
	case *ast.FuncType:
		return "func()"
	case *ast.Ellipsis:
		return "..." + typeToString(t.Elt)
	case *ast.ChanType:
		return "chan " + typeToString(t.Value)
	default:
		return fmt.Sprintf("%T", expr)
	}
}
