// Package rust is the Rust frontend, built on tree-sitter's Rust
// grammar. Node-type walking (struct_item/enum_item/trait_item/
// impl_item/function_item, visibility_modifier detection) is grounded
// on theRebelliousNerd-codenerd's internal/world/rust_parser.go, the
// pack's only tree-sitter Rust walker.
package rust

import (
	"context"
	"os"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	tsrust "github.com/smacker/go-tree-sitter/rust"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/registry"
)

func init() {
	registry.Register("rust", []string{".rs"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

type Frontend struct {
	cfg cgparser.ParserConfig
	cgparser.MetricsRecorder
}

func New(cfg cgparser.ParserConfig) *Frontend { return &Frontend{cfg: cfg} }

func (f *Frontend) Language() string              { return "rust" }
func (f *Frontend) FileExtensions() []string      { return []string{".rs"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	return strings.EqualFold(pathExt(path), ".rs")
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
	p.SetLanguage(tsrust.GetLanguage())
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
			Language:  "rust",
			LineCount: int(root.EndPoint().Row) + 1,
		},
	}

	// Structs/enums are collected by name first and only copied into
	// ir.Classes once every impl block has attached its methods, since
	// appending to ir.Classes while holding pointers into it would be
	// invalidated by the slice's own reallocation.
	classesByName := map[string]*codeir.ClassEntity{}
	var classOrder []string
	orphanMethods := map[string][]codeir.FunctionEntity{}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "use_declaration":
			ir.Imports = append(ir.Imports, useImports(child, src)...)
		case "struct_item":
			class := structEntity(child, src)
			classesByName[class.Name] = &class
			classOrder = append(classOrder, class.Name)
		case "enum_item":
			class := enumEntity(child, src)
			classesByName[class.Name] = &class
			classOrder = append(classOrder, class.Name)
		case "trait_item":
			ir.Traits = append(ir.Traits, traitEntity(child, src))
		case "function_item":
			ir.Functions = append(ir.Functions, functionEntity(child, src, hasPubVisibility(child, src)))
		}
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "impl_item" {
			continue
		}
		typeName, traitName, methods := implMethods(child, src)
		if traitName != "" && typeName != "" {
			ir.Implementations = append(ir.Implementations, codeir.ImplementationRelation{
				Implementor: typeName,
				TraitName:   traitName,
			})
		}
		for _, m := range methods {
			m.ParentClass = typeName
			if class, ok := classesByName[typeName]; ok {
				class.Methods = append(class.Methods, m)
			} else {
				orphanMethods[typeName] = append(orphanMethods[typeName], m)
			}
		}
	}

	for _, name := range classOrder {
		class := *classesByName[name]
		ir.Classes = append(ir.Classes, class)
		ir.Functions = append(ir.Functions, class.Methods...)
	}
	for _, methods := range orphanMethods {
		ir.Functions = append(ir.Functions, methods...)
	}

	collectCalls(root, src, ir)
	return ir
}

func hasPubVisibility(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "visibility_modifier" {
			return strings.HasPrefix(child.Content(src), "pub")
		}
	}
	return false
}

func structEntity(node *sitter.Node, src []byte) codeir.ClassEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	class := codeir.ClassEntity{
		Name:       name,
		Visibility: visibilityOf(hasPubVisibility(node, src)),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
	}
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			field := body.NamedChild(i)
			if field.Type() != "field_declaration" {
				continue
			}
			fnameNode := field.ChildByFieldName("name")
			ftypeNode := field.ChildByFieldName("type")
			if fnameNode == nil {
				continue
			}
			class.Fields = append(class.Fields, codeir.Field{
				Name:           fnameNode.Content(src),
				TypeAnnotation: contentOrEmpty(ftypeNode, src),
				Visibility:     visibilityOf(hasPubVisibility(field, src)),
			})
		}
	}
	return class
}

func enumEntity(node *sitter.Node, src []byte) codeir.ClassEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	return codeir.ClassEntity{
		Name:       name,
		Visibility: visibilityOf(hasPubVisibility(node, src)),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
	}
}

func traitEntity(node *sitter.Node, src []byte) codeir.TraitEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	trait := codeir.TraitEntity{
		Name:      name,
		LineStart: int(node.StartPoint().Row) + 1,
		LineEnd:   int(node.EndPoint().Row) + 1,
	}
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			if child := body.NamedChild(i); child.Type() == "function_item" || child.Type() == "function_signature_item" {
				trait.Methods = append(trait.Methods, functionEntity(child, src, true))
			}
		}
	}
	return trait
}

// implMethods mirrors parseImplItem: resolve the implemented type name,
// the optional trait name, and every function_item in the impl body.
func implMethods(node *sitter.Node, src []byte) (typeName, traitName string, methods []codeir.FunctionEntity) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return "", "", nil
	}
	typeName = typeNode.Content(src)
	if idx := strings.Index(typeName, "<"); idx > 0 {
		typeName = typeName[:idx]
	}
	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		traitName = traitNode.Content(src)
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return typeName, traitName, nil
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "function_item" {
			methods = append(methods, functionEntity(child, src, hasPubVisibility(child, src)))
		}
	}
	return typeName, traitName, methods
}

func functionEntity(node *sitter.Node, src []byte, isPub bool) codeir.FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	fn := codeir.FunctionEntity{
		Name:       name,
		Visibility: visibilityOf(isPub),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
		IsAsync:    hasAsyncKeyword(node, src),
		IsTest:     strings.HasPrefix(name, "test_"),
	}
	if retType := node.ChildByFieldName("return_type"); retType != nil {
		fn.ReturnType = retType.Content(src)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			switch p.Type() {
			case "self_parameter":
				continue
			case "parameter":
				param := codeir.Parameter{}
				if pn := p.ChildByFieldName("pattern"); pn != nil {
					param.Name = pn.Content(src)
				}
				if pt := p.ChildByFieldName("type"); pt != nil {
					param.Type = pt.Content(src)
				}
				fn.Parameters = append(fn.Parameters, param)
			default:
				fn.Parameters = append(fn.Parameters, codeir.Parameter{Name: p.Content(src)})
			}
		}
	}
	return fn
}

func hasAsyncKeyword(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "async" {
			return true
		}
		if child.IsNamed() {
			break
		}
	}
	return false
}

func contentOrEmpty(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

func visibilityOf(isPub bool) codeir.Visibility {
	if isPub {
		return codeir.VisibilityPublic
	}
	return codeir.VisibilityPrivate
}

// useImports walks a use_declaration's tree, handling plain paths,
// aliasing (use_as_clause), wildcard (use_wildcard) and grouped
// imports (scoped_use_list), flattening each leaf into one
// ImportRelation rooted at its outer scope.
func useImports(node *sitter.Node, src []byte) []codeir.ImportRelation {
	var out []codeir.ImportRelation
	var walk func(n *sitter.Node, prefix string)
	walk = func(n *sitter.Node, prefix string) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "scoped_identifier":
			path := n.Content(src)
			out = append(out, codeir.ImportRelation{Imported: joinPath(prefix, path)})
		case "identifier", "crate", "self", "super":
			out = append(out, codeir.ImportRelation{Imported: joinPath(prefix, n.Content(src))})
		case "use_as_clause":
			pathNode := n.ChildByFieldName("path")
			aliasNode := n.ChildByFieldName("alias")
			if pathNode == nil {
				return
			}
			imp := codeir.ImportRelation{Imported: joinPath(prefix, pathNode.Content(src))}
			if aliasNode != nil {
				imp.Alias = aliasNode.Content(src)
			}
			out = append(out, imp)
		case "use_wildcard":
			pathNode := n.NamedChild(0)
			path := prefix
			if pathNode != nil {
				path = joinPath(prefix, pathNode.Content(src))
			}
			out = append(out, codeir.ImportRelation{Imported: path, Wildcard: true})
		case "scoped_use_list":
			pathNode := n.ChildByFieldName("path")
			listNode := n.ChildByFieldName("list")
			newPrefix := prefix
			if pathNode != nil {
				newPrefix = joinPath(prefix, pathNode.Content(src))
			}
			if listNode != nil {
				for i := 0; i < int(listNode.NamedChildCount()); i++ {
					walk(listNode.NamedChild(i), newPrefix)
				}
			}
		case "use_list":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				walk(n.NamedChild(i), prefix)
			}
		default:
			for i := 0; i < int(n.NamedChildCount()); i++ {
				walk(n.NamedChild(i), prefix)
			}
		}
	}
	if node.NamedChildCount() > 0 {
		walk(node.NamedChild(0), "")
	}
	return out
}

func joinPath(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + "::" + suffix
}

// collectCalls walks function bodies for call_expression nodes,
// qualifying self.method() calls to ParentType.method.
func collectCalls(root *sitter.Node, src []byte, ir *codeir.CodeIR) {
	var walk func(node *sitter.Node, enclosingType, enclosingFunc string)
	walk = func(node *sitter.Node, enclosingType, enclosingFunc string) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "impl_item":
			if typeNode := node.ChildByFieldName("type"); typeNode != nil {
				enclosingType = typeNode.Content(src)
				if idx := strings.Index(enclosingType, "<"); idx > 0 {
					enclosingType = enclosingType[:idx]
				}
			}
		case "function_item":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingFunc = nameNode.Content(src)
			}
		case "call_expression":
			if enclosingFunc != "" {
				fnNode := node.ChildByFieldName("function")
				if fnNode != nil {
					caller := enclosingFunc
					if enclosingType != "" {
						caller = enclosingType + "." + enclosingFunc
					}
					callee, isMethod := calleeName(fnNode, src, enclosingType)
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
			walk(node.NamedChild(i), enclosingType, enclosingFunc)
		}
	}
	walk(root, "", "")
}

func calleeName(fnNode *sitter.Node, src []byte, enclosingType string) (string, bool) {
	if fnNode.Type() == "field_expression" {
		obj := fnNode.ChildByFieldName("value")
		field := fnNode.ChildByFieldName("field")
		if obj == nil || field == nil {
			return "", false
		}
		if obj.Content(src) == "self" && enclosingType != "" {
			return enclosingType + "." + field.Content(src), true
		}
		return obj.Content(src) + "." + field.Content(src), true
	}
	if fnNode.Type() == "identifier" {
		return fnNode.Content(src), false
	}
	if fnNode.Type() == "scoped_identifier" {
		return fnNode.Content(src), false
	}
	return "", false
}
