// Package javascript is the JavaScript/TypeScript frontend. Walking
// technique (import_statement/function_declaration/class_declaration/
// method_definition/lexical_declaration node types, ChildByFieldName
// for name/parameters/body) generalizes a JSX-component inspection
// approach to plain functions, classes, and arrow-function bindings.
package javascript

import (
	"context"
	"os"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	tsjavascript "github.com/smacker/go-tree-sitter/javascript"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/registry"
)

func init() {
	registry.Register("javascript", []string{".js", ".jsx", ".ts", ".tsx"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

type Frontend struct {
	cfg cgparser.ParserConfig
	cgparser.MetricsRecorder
}

func New(cfg cgparser.ParserConfig) *Frontend { return &Frontend{cfg: cfg} }

func (f *Frontend) Language() string              { return "javascript" }
func (f *Frontend) FileExtensions() []string      { return []string{".js", ".jsx", ".ts", ".tsx"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	ext := strings.ToLower(pathExt(path))
	for _, want := range f.FileExtensions() {
		if ext == want {
			return true
		}
	}
	return false
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
	p.SetLanguage(tsjavascript.GetLanguage())
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
			Language:  "javascript",
			LineCount: int(root.EndPoint().Row) + 1,
		},
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			ir.Imports = append(ir.Imports, parseImport(child, src)...)
		case "function_declaration":
			ir.Functions = append(ir.Functions, functionEntity(child, src))
		case "class_declaration":
			ir.Classes = append(ir.Classes, classEntity(child, src))
		case "lexical_declaration", "variable_declaration":
			if fn, ok := arrowFunctionEntity(child, src); ok {
				ir.Functions = append(ir.Functions, fn)
			}
		}
	}

	collectCalls(root, src, ir)
	return ir
}

// parseImport mirrors inspector/jsx's parseImportDeclarations: find the
// string-literal import path, then walk identifier/import_clause/
// named_imports/import_specifier children for bound names.
func parseImport(node *sitter.Node, src []byte) []codeir.ImportRelation {
	var path string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "string" {
			path = strings.Trim(child.Content(src), "'\"")
			break
		}
	}
	if path == "" {
		return nil
	}

	imp := codeir.ImportRelation{Imported: path}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			imp.Symbols = append(imp.Symbols, child.Content(src))
		case "namespace_import":
			imp.Wildcard = true
		case "import_clause":
			collectImportClause(child, src, &imp)
		}
	}
	return []codeir.ImportRelation{imp}
}

func collectImportClause(node *sitter.Node, src []byte, imp *codeir.ImportRelation) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "identifier":
			imp.Symbols = append(imp.Symbols, child.Content(src))
		case "namespace_import":
			imp.Wildcard = true
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				for k := 0; k < int(spec.NamedChildCount()); k++ {
					if name := spec.NamedChild(k); name.Type() == "identifier" {
						imp.Symbols = append(imp.Symbols, name.Content(src))
					}
				}
			}
		}
	}
}

func functionEntity(node *sitter.Node, src []byte) codeir.FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	fn := codeir.FunctionEntity{
		Name:       name,
		Visibility: codeir.VisibilityPublic,
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
		IsAsync:    hasAsyncKeyword(node, src),
	}
	fn.Parameters = parametersOf(node, src)
	return fn
}

func classEntity(node *sitter.Node, src []byte) codeir.ClassEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	class := codeir.ClassEntity{
		Name:       name,
		Visibility: codeir.VisibilityPublic,
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
	}
	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		class.BaseClasses = append(class.BaseClasses, superclass.Content(src))
	}
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "method_definition":
				method := methodEntity(member, src)
				method.ParentClass = name
				class.Methods = append(class.Methods, method)
			case "field_definition":
				if field := fieldEntity(member, src); field.Name != "" {
					class.Fields = append(class.Fields, field)
				}
			}
		}
	}
	return class
}

func methodEntity(node *sitter.Node, src []byte) codeir.FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	vis := codeir.VisibilityPublic
	if strings.HasPrefix(name, "#") {
		vis = codeir.VisibilityPrivate
	}
	fn := codeir.FunctionEntity{
		Name:       strings.TrimPrefix(name, "#"),
		Visibility: vis,
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
		IsAsync:    hasAsyncKeyword(node, src),
		IsStatic:   hasStaticKeyword(node, src),
	}
	fn.Parameters = parametersOf(node, src)
	return fn
}

func fieldEntity(node *sitter.Node, src []byte) codeir.Field {
	nameNode := node.ChildByFieldName("property")
	if nameNode == nil {
		nameNode = node.NamedChild(0)
	}
	if nameNode == nil {
		return codeir.Field{}
	}
	name := nameNode.Content(src)
	vis := codeir.VisibilityPublic
	if strings.HasPrefix(name, "#") {
		vis = codeir.VisibilityPrivate
	}
	return codeir.Field{
		Name:       strings.TrimPrefix(name, "#"),
		Visibility: vis,
		IsStatic:   hasStaticKeyword(node, src),
	}
}

// arrowFunctionEntity recognizes `const name = (...) => {...}`,
// matching inspector/jsx's processArrowFunctionComponent pattern of
// reading a lexical_declaration's variable_declarator.
func arrowFunctionEntity(node *sitter.Node, src []byte) (codeir.FunctionEntity, bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		declarator := node.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		valueNode := declarator.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		if valueNode.Type() != "arrow_function" && valueNode.Type() != "function" {
			continue
		}
		fn := codeir.FunctionEntity{
			Name:       nameNode.Content(src),
			Visibility: codeir.VisibilityPublic,
			LineStart:  int(node.StartPoint().Row) + 1,
			LineEnd:    int(node.EndPoint().Row) + 1,
			IsAsync:    hasAsyncKeyword(valueNode, src),
		}
		fn.Parameters = parametersOf(valueNode, src)
		return fn, true
	}
	return codeir.FunctionEntity{}, false
}

func parametersOf(node *sitter.Node, src []byte) []codeir.Parameter {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []codeir.Parameter
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "identifier":
			out = append(out, codeir.Parameter{Name: p.Content(src)})
		case "required_parameter", "optional_parameter":
			param := codeir.Parameter{}
			if pattern := p.ChildByFieldName("pattern"); pattern != nil {
				param.Name = pattern.Content(src)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = t.Content(src)
			}
			out = append(out, param)
		case "assignment_pattern":
			param := codeir.Parameter{}
			if left := p.ChildByFieldName("left"); left != nil {
				param.Name = left.Content(src)
			}
			if right := p.ChildByFieldName("right"); right != nil {
				param.Default = right.Content(src)
			}
			out = append(out, param)
		default:
			out = append(out, codeir.Parameter{Name: p.Content(src)})
		}
	}
	return out
}

func hasAsyncKeyword(node *sitter.Node, src []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(node.Content(src)), "async")
}

func hasStaticKeyword(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "static" || child.Content(src) == "static" {
			return true
		}
		if child.IsNamed() {
			break
		}
	}
	return false
}

// collectCalls walks for call_expression nodes, qualifying this.method()
// calls to ClassName.method the same way the other frontends qualify
// same-receiver calls.
func collectCalls(root *sitter.Node, src []byte, ir *codeir.CodeIR) {
	var walk func(node *sitter.Node, enclosingClass, enclosingFunc string)
	walk = func(node *sitter.Node, enclosingClass, enclosingFunc string) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "class_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingClass = nameNode.Content(src)
			}
		case "method_definition", "function_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingFunc = nameNode.Content(src)
			}
		case "call_expression":
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
	if fnNode.Type() == "member_expression" {
		obj := fnNode.ChildByFieldName("object")
		prop := fnNode.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return "", false
		}
		if obj.Content(src) == "this" && enclosingClass != "" {
			return enclosingClass + "." + prop.Content(src), true
		}
		return obj.Content(src) + "." + prop.Content(src), true
	}
	if fnNode.Type() == "identifier" {
		return fnNode.Content(src), false
	}
	return "", false
}
