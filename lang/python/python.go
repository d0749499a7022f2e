// Package python is the Python frontend, built on tree-sitter's Python
// grammar. Extraction walks function_definition/class_definition/
// import_statement nodes the same way rohankatakam-coderisk's
// treesitter.extractPythonEntities does, adapted to the shared
// smacker/go-tree-sitter API and the codeir.CodeIR shape.
package python

import (
	"context"
	"os"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/registry"
)

func init() {
	registry.Register("python", []string{".py"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

type Frontend struct {
	cfg cgparser.ParserConfig
	cgparser.MetricsRecorder
}

func New(cfg cgparser.ParserConfig) *Frontend { return &Frontend{cfg: cfg} }

func (f *Frontend) Language() string              { return "python" }
func (f *Frontend) FileExtensions() []string      { return []string{".py"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	return strings.EqualFold(pathExt(path), ".py")
}

func (f *Frontend) DiscoverFiles(dir string) ([]string, error) {
	return cgparser.DiscoverFiles(dir, f.FileExtensions(), f.cfg.ExcludeDirs)
}

func (f *Frontend) ParseFile(path string, store *graphstore.Store) (cgparser.FileInfo, error) {
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
	f.RecordSuccess(info.ParseTime, info.EntityCount(), len(info.Imports))
	return info, nil
}

func (f *Frontend) ParseSource(source, filePath string, store *graphstore.Store) (cgparser.FileInfo, error) {
	start := time.Now()
	p := sitter.NewParser()
	p.SetLanguage(tspython.GetLanguage())
	src := []byte(source)

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return cgparser.FileInfo{}, &cgparser.ParseError{Kind: cgparser.ParseErrorNoTree, Path: filePath, Msg: err.Error()}
	}
	root := tree.RootNode()

	ir := extract(root, src, filePath)
	info, err := cgparser.IRToGraph(ir, store, filePath)
	info.ParseTime = time.Since(start)
	return info, err
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

func extract(root *sitter.Node, src []byte, filePath string) *codeir.CodeIR {
	ir := &codeir.CodeIR{
		Module: &codeir.ModuleEntity{
			Path:      filePath,
			Language:  "python",
			LineCount: int(root.EndPoint().Row) + 1,
		},
	}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "function_definition":
			ir.Functions = append(ir.Functions, functionEntity(node, src))
		case "class_definition":
			ir.Classes = append(ir.Classes, classEntity(node, src))
		case "import_statement":
			ir.Imports = append(ir.Imports, plainImports(node, src)...)
		case "import_from_statement":
			if imp, ok := fromImport(node, src); ok {
				ir.Imports = append(ir.Imports, imp)
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(root)

	collectCalls(root, src, ir)
	return ir
}

// functionEntity builds a FunctionEntity for a function_definition node,
// tagging it with its enclosing class name (if any) via parentClassName
// so the mapper attaches it as a method rather than a free function.
func functionEntity(node *sitter.Node, src []byte) codeir.FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	fn := codeir.FunctionEntity{
		Name:        name,
		Visibility:  visibilityFromName(name),
		LineStart:   int(node.StartPoint().Row) + 1,
		LineEnd:     int(node.EndPoint().Row) + 1,
		IsTest:      strings.HasPrefix(name, "test_"),
		ParentClass: parentClassName(node, src),
	}
	if retType := node.ChildByFieldName("return_type"); retType != nil {
		fn.ReturnType = retType.Content(src)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			fn.Parameters = append(fn.Parameters, parameterOf(p, src))
		}
	}
	if decorated := node.Parent(); decorated != nil && decorated.Type() == "decorated_definition" {
		for i := 0; i < int(decorated.NamedChildCount()); i++ {
			child := decorated.NamedChild(i)
			if child.Type() == "decorator" {
				fn.Decorators = append(fn.Decorators, strings.TrimPrefix(child.Content(src), "@"))
				if strings.Contains(child.Content(src), "asyncio") {
					fn.IsAsync = true
				}
			}
		}
	}
	body := node.Content(src)
	if strings.HasPrefix(strings.TrimSpace(body), "async def") {
		fn.IsAsync = true
	}
	return fn
}

func parameterOf(node *sitter.Node, src []byte) codeir.Parameter {
	switch node.Type() {
	case "identifier":
		return codeir.Parameter{Name: node.Content(src)}
	case "typed_parameter":
		param := codeir.Parameter{}
		if node.NamedChildCount() > 0 {
			param.Name = node.NamedChild(0).Content(src)
		}
		if t := node.ChildByFieldName("type"); t != nil {
			param.Type = t.Content(src)
		}
		return param
	case "default_parameter", "typed_default_parameter":
		param := codeir.Parameter{}
		if n := node.ChildByFieldName("name"); n != nil {
			param.Name = n.Content(src)
		}
		if t := node.ChildByFieldName("type"); t != nil {
			param.Type = t.Content(src)
		}
		if v := node.ChildByFieldName("value"); v != nil {
			param.Default = v.Content(src)
		}
		return param
	default:
		return codeir.Parameter{Name: node.Content(src)}
	}
}

func classEntity(node *sitter.Node, src []byte) codeir.ClassEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	class := codeir.ClassEntity{
		Name:       name,
		Visibility: visibilityFromName(name),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
	}
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			base := superclasses.NamedChild(i).Content(src)
			if base == "ABC" || strings.HasSuffix(base, "Protocol") {
				class.IsAbstract = true
			}
			class.BaseClasses = append(class.BaseClasses, base)
		}
	}
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			target := child
			if child.Type() == "decorated_definition" && child.NamedChildCount() > 0 {
				target = child.NamedChild(child.NamedChildCount() - 1)
			}
			if target.Type() == "function_definition" {
				fn := functionEntity(target, src)
				fn.ParentClass = name
				class.Methods = append(class.Methods, fn)
			}
		}
	}
	return class
}

// parentClassName walks up to find an enclosing class_definition's name,
// the same lookup rohankatakam-coderisk's findPythonParentClassName does.
func parentClassName(node *sitter.Node, src []byte) string {
	current := node.Parent()
	for current != nil {
		if current.Type() == "class_definition" {
			if nameNode := current.ChildByFieldName("name"); nameNode != nil {
				return nameNode.Content(src)
			}
		}
		current = current.Parent()
	}
	return ""
}

func plainImports(node *sitter.Node, src []byte) []codeir.ImportRelation {
	var out []codeir.ImportRelation
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			out = append(out, codeir.ImportRelation{Imported: child.Content(src)})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil {
				continue
			}
			imp := codeir.ImportRelation{Imported: name.Content(src)}
			if alias != nil {
				imp.Alias = alias.Content(src)
			}
			out = append(out, imp)
		}
	}
	return out
}

func fromImport(node *sitter.Node, src []byte) (codeir.ImportRelation, bool) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return codeir.ImportRelation{}, false
	}
	module := moduleNode.Content(src)
	imp := codeir.ImportRelation{Imported: module}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == moduleNode {
			continue
		}
		switch child.Type() {
		case "wildcard_import":
			imp.Wildcard = true
		case "dotted_name", "identifier":
			imp.Symbols = append(imp.Symbols, child.Content(src))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				imp.Symbols = append(imp.Symbols, name.Content(src))
			}
		}
	}
	return imp, true
}

func visibilityFromName(name string) codeir.Visibility {
	if strings.HasPrefix(name, "_") {
		return codeir.VisibilityPrivate
	}
	return codeir.VisibilityPublic
}

// collectCalls walks function bodies for call expressions, qualifying
// self.method() calls to ClassName.method the same way the Java and Go
// frontends qualify same-receiver calls, so IRToGraph's byQualifiedName
// lookup can resolve them without type inference.
func collectCalls(root *sitter.Node, src []byte, ir *codeir.CodeIR) {
	var walk func(node *sitter.Node, enclosingClass, enclosingFunc string)
	walk = func(node *sitter.Node, enclosingClass, enclosingFunc string) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "class_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingClass = nameNode.Content(src)
			}
		case "function_definition":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingFunc = nameNode.Content(src)
				if parentClassName(node, src) == "" {
					enclosingClass = ""
				}
			}
		case "call":
			if enclosingFunc != "" {
				fnNode := node.ChildByFieldName("function")
				if fnNode != nil {
					caller := enclosingFunc
					if enclosingClass != "" {
						caller = enclosingClass + "." + enclosingFunc
					}
					callee, isMethod := calleeName(fnNode, src, enclosingClass)
					if callee != "" {
						ir.Calls = append(ir.Calls, codeir.CallRelation{
							Caller:   caller,
							Callee:   callee,
							Line:     int(node.StartPoint().Row) + 1,
							IsMethod: isMethod,
						})
					}
				}
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i), enclosingClass, enclosingFunc)
		}
	}
	walk(root, "", "")
}

func calleeName(fnNode *sitter.Node, src []byte, enclosingClass string) (string, bool) {
	if fnNode.Type() == "attribute" {
		obj := fnNode.ChildByFieldName("object")
		attr := fnNode.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return "", false
		}
		if obj.Content(src) == "self" && enclosingClass != "" {
			return enclosingClass + "." + attr.Content(src), true
		}
		return obj.Content(src) + "." + attr.Content(src), true
	}
	if fnNode.Type() == "identifier" {
		return fnNode.Content(src), false
	}
	return "", false
}
