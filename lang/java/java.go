// Package java is the Java frontend, built on the tree-sitter Java
// grammar: a sitter.Parser walking class/interface/method declaration
// nodes by field name.
package java

import (
	"context"
	"os"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/registry"
)

func init() {
	registry.Register("java", []string{".java"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

// Frontend implements parser.CodeParser for Java.
type Frontend struct {
	cfg cgparser.ParserConfig
	cgparser.MetricsRecorder
}

func New(cfg cgparser.ParserConfig) *Frontend { return &Frontend{cfg: cfg} }

func (f *Frontend) Language() string              { return "java" }
func (f *Frontend) FileExtensions() []string      { return []string{".java"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	return strings.EqualFold(pathExt(path), ".java")
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
	p.SetLanguage(tsjava.GetLanguage())
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
			Language:  "java",
			LineCount: int(root.EndPoint().Row) + 1,
		},
	}

	packageName := ""
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			if name := child.NamedChild(0); name != nil {
				packageName = name.Content(src)
			}
		case "import_declaration":
			if imp := parseImport(child, src); imp.Imported != "" {
				ir.Imports = append(ir.Imports, imp)
			}
		case "class_declaration":
			ir.Classes = append(ir.Classes, classEntity(child, src, false))
		case "interface_declaration":
			ir.Traits = append(ir.Traits, traitEntity(child, src))
		}
	}
	if ir.Module != nil {
		ir.Module.Name = packageName
	}

	for i := range ir.Classes {
		class := &ir.Classes[i]
		for j := range class.Methods {
			class.Methods[j].ParentClass = class.Name
		}
		ir.Functions = append(ir.Functions, class.Methods...)
	}

	collectCalls(root, src, ir)
	return ir
}

func parseImport(node *sitter.Node, src []byte) codeir.ImportRelation {
	if node.NamedChildCount() == 0 {
		return codeir.ImportRelation{}
	}
	inner := node.NamedChild(0)
	scope := inner.ChildByFieldName("scope")
	name := inner.ChildByFieldName("name")
	if scope == nil {
		return codeir.ImportRelation{}
	}
	pkg := scope.Content(src)
	if name == nil {
		return codeir.ImportRelation{Imported: pkg, Wildcard: true}
	}
	return codeir.ImportRelation{Imported: pkg + "." + name.Content(src)}
}

func classEntity(node *sitter.Node, src []byte, isInterface bool) codeir.ClassEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	class := codeir.ClassEntity{
		Name:       name,
		Visibility: visibility(node, src),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
	}
	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		class.BaseClasses = append(class.BaseClasses, strings.TrimSpace(superclass.Content(src)))
	}
	if interfaces := node.ChildByFieldName("interfaces"); interfaces != nil {
		for i := 0; i < int(interfaces.NamedChildCount()); i++ {
			class.ImplementedTraits = append(class.ImplementedTraits, interfaces.NamedChild(i).Content(src))
		}
	}
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			switch child.Type() {
			case "method_declaration", "constructor_declaration":
				class.Methods = append(class.Methods, methodEntity(child, src))
			case "field_declaration":
				if field := fieldEntity(child, src); field.Name != "" {
					class.Fields = append(class.Fields, field)
				}
			}
		}
	}
	return class
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
			if child := body.NamedChild(i); child.Type() == "method_declaration" {
				trait.Methods = append(trait.Methods, methodEntity(child, src))
			}
		}
	}
	return trait
}

func methodEntity(node *sitter.Node, src []byte) codeir.FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	fn := codeir.FunctionEntity{
		Name:       name,
		Visibility: visibility(node, src),
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
		IsStatic:   hasModifier(node, src, "static"),
		IsAbstract: hasModifier(node, src, "abstract"),
	}
	if retType := node.ChildByFieldName("type"); retType != nil {
		fn.ReturnType = retType.Content(src)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			pname := p.ChildByFieldName("name")
			ptype := p.ChildByFieldName("type")
			param := codeir.Parameter{}
			if pname != nil {
				param.Name = pname.Content(src)
			}
			if ptype != nil {
				param.Type = ptype.Content(src)
			}
			fn.Parameters = append(fn.Parameters, param)
		}
	}
	return fn
}

func fieldEntity(node *sitter.Node, src []byte) codeir.Field {
	typeNode := node.ChildByFieldName("type")
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return codeir.Field{}
	}
	nameNode := declarator.ChildByFieldName("name")
	if nameNode == nil {
		return codeir.Field{}
	}
	return codeir.Field{
		Name:           nameNode.Content(src),
		TypeAnnotation: contentOrEmpty(typeNode, src),
		Visibility:     visibility(node, src),
		IsStatic:       hasModifier(node, src, "static"),
		IsConstant:     hasModifier(node, src, "final") && hasModifier(node, src, "static"),
	}
}

func contentOrEmpty(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

func hasModifier(node *sitter.Node, src []byte, modifier string) bool {
	if node.NamedChildCount() == 0 {
		return false
	}
	mods := node.NamedChild(0)
	if mods.Type() != "modifiers" {
		return false
	}
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		if mods.NamedChild(i).Content(src) == modifier {
			return true
		}
	}
	return false
}

// visibility maps Java's access modifiers onto the shared Visibility
// vocabulary. Package-private (no modifier) has no direct equivalent,
// so it's reported as internal, folding compilation-unit-scoped access
// into that level.
func visibility(node *sitter.Node, src []byte) codeir.Visibility {
	if node.NamedChildCount() == 0 {
		return codeir.VisibilityInternal
	}
	mods := node.NamedChild(0)
	if mods.Type() != "modifiers" {
		return codeir.VisibilityInternal
	}
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		switch mods.NamedChild(i).Content(src) {
		case "public":
			return codeir.VisibilityPublic
		case "private":
			return codeir.VisibilityPrivate
		case "protected":
			return codeir.VisibilityProtected
		}
	}
	return codeir.VisibilityInternal
}

// collectCalls walks method bodies for method_invocation nodes and
// records a Calls relation keyed by the enclosing method's qualified
// name. Caller qualification mirrors the Go frontend: unqualified
// within the same class is left for mapper-side resolution.
func collectCalls(root *sitter.Node, src []byte, ir *codeir.CodeIR) {
	var walk func(node *sitter.Node, enclosingClass, enclosingMethod string)
	walk = func(node *sitter.Node, enclosingClass, enclosingMethod string) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "class_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingClass = nameNode.Content(src)
			}
		case "method_declaration", "constructor_declaration":
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				enclosingMethod = nameNode.Content(src)
			} else {
				enclosingMethod = "<init>"
			}
		case "method_invocation":
			if enclosingMethod != "" {
				nameNode := node.ChildByFieldName("name")
				if nameNode != nil {
					caller := enclosingMethod
					if enclosingClass != "" {
						caller = enclosingClass + "." + enclosingMethod
					}
					callee := nameNode.Content(src)
					if objNode := node.ChildByFieldName("object"); objNode != nil && objNode.Content(src) == "this" && enclosingClass != "" {
						callee = enclosingClass + "." + callee
					}
					ir.Calls = append(ir.Calls, codeir.CallRelation{
						Caller:   caller,
						Callee:   callee,
						Line:     int(node.StartPoint().Row) + 1,
						IsMethod: true,
					})
				}
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i), enclosingClass, enclosingMethod)
		}
	}
	walk(root, "", "")
}
