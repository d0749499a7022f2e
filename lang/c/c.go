// Package c is the C frontend. It is the only frontend with a
// transformation stage ahead of tree-sitter: kernel and system C uses
// GCC extensions and macro-heavy constructs tree-sitter's C grammar
// can't parse as written, so source runs through the package pipeline
// (platform detection, header stubs, conditional evaluation, GCC
// extension neutralization, attribute stripping, macro neutralization)
// before extraction. AST walking (function_definition/struct_specifier/
// enum_specifier/call_expression node-type switch, declarator-unwrap
// for names) is authored directly against the tree-sitter-c grammar in
// the style the other frontends use, since the original's own C
// visitor is absent from the retrieval pack.
package c

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	sitter "github.com/smacker/go-tree-sitter"
	tsc "github.com/smacker/go-tree-sitter/c"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/pipeline"
	"github.com/viant/codegraph/registry"
)

func init() {
	registry.Register("c", []string{".c", ".h"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

// ExtractionMode selects one of the three extraction modes spec.md
// names for C sources.
type ExtractionMode string

const (
	// ModeStrict fails the parse on any recovered error node.
	ModeStrict ExtractionMode = "strict"
	// ModeTolerant extracts a partial IR and records an error histogram.
	ModeTolerant ExtractionMode = "tolerant"
	// ModeKernel is Tolerant plus the full pipeline with the platform
	// forced to linux, for kernel module sources.
	ModeKernel ExtractionMode = "kernel"
)

// ExtractionDiagnostics is what the pipeline and the tolerant walk
// produced for the most recent ParseSource/ParseFile call: not part of
// the CodeParser contract (which returns only FileInfo/error), but
// available to callers that want the detail, the same way ParserConfig
// carries its Extra escape hatch.
type ExtractionDiagnostics struct {
	Platform        pipeline.DetectionResult
	Transformations []pipeline.Transformation
	Stats           pipeline.PipelineStats
	Errors          *pipeline.ErrorHistogram
	IsPartial       bool
}

type Frontend struct {
	cfg      cgparser.ParserConfig
	pipeline *pipeline.Pipeline
	last     *ExtractionDiagnostics
	cgparser.MetricsRecorder
}

func New(cfg cgparser.ParserConfig) *Frontend {
	return &Frontend{cfg: cfg, pipeline: pipeline.NewPipeline()}
}

func (f *Frontend) Language() string              { return "c" }
func (f *Frontend) FileExtensions() []string      { return []string{".c", ".h"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	ext := strings.ToLower(pathExt(path))
	return ext == ".c" || ext == ".h"
}

func (f *Frontend) DiscoverFiles(dir string) ([]string, error) {
	return cgparser.DiscoverFiles(dir, f.FileExtensions(), f.cfg.ExcludeDirs)
}

// LastDiagnostics returns the pipeline/error diagnostics from the most
// recent ParseSource or ParseFile call, or nil if none has run yet.
func (f *Frontend) LastDiagnostics() *ExtractionDiagnostics {
	return f.last
}

func (f *Frontend) mode() ExtractionMode {
	if f.cfg.Extra != nil {
		if raw, ok := f.cfg.Extra["c_mode"]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return ExtractionMode(s)
			}
		}
	}
	return ModeStrict
}

func (f *Frontend) forcePlatform() string {
	if f.cfg.Extra != nil {
		if raw, ok := f.cfg.Extra["c_force_platform"]; ok {
			if s, ok := raw.(string); ok {
				return s
			}
		}
	}
	return ""
}

func (f *Frontend) pipelineConfig() pipeline.PipelineConfig {
	mode := f.mode()
	var cfg pipeline.PipelineConfig
	switch mode {
	case ModeKernel:
		cfg = pipeline.KernelConfig()
	case ModeTolerant:
		cfg = pipeline.DefaultConfig()
	default:
		cfg = pipeline.MinimalConfig()
	}
	if forced := f.forcePlatform(); forced != "" {
		cfg.ForcePlatform = forced
	}
	return cfg
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
	mode := f.mode()

	result := f.pipeline.Process(source, f.pipelineConfig())
	posMap := pipeline.NewPositionMap(result.Transformations)

	p := sitter.NewParser()
	p.SetLanguage(tsc.GetLanguage())
	src := []byte(result.Source)

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		wrapped := errors.Wrap(err, "tree-sitter scan bailed out after pipeline transformation")
		return cgparser.FileInfo{}, &cgparser.ParseError{
			Kind:  cgparser.ParseErrorNoTree,
			Path:  filePath,
			Msg:   wrapped.Error(),
			Cause: wrapped,
		}
	}
	root := tree.RootNode()

	histogram := pipeline.NewErrorHistogram()
	errorCount := collectErrorNodes(root, src, posMap, histogram)

	if errorCount > 0 && mode == ModeStrict {
		return cgparser.FileInfo{}, &cgparser.ParseError{
			Kind: cgparser.ParseErrorSyntax,
			Path: filePath,
			Msg:  "syntax error in C source",
		}
	}

	ir := extract(root, src, filePath, strings.Count(source, "\n")+1)

	f.last = &ExtractionDiagnostics{
		Platform:        result.Platform,
		Transformations: result.Transformations,
		Stats:           result.Stats,
		Errors:          histogram,
		IsPartial:       errorCount > 0,
	}

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

// collectErrorNodes walks the tree for ERROR/MISSING nodes, mapping
// each one's position back to the original source via posMap and
// recording it in histogram. Returns the total error node count.
func collectErrorNodes(node *sitter.Node, src []byte, posMap *pipeline.PositionMap, histogram *pipeline.ErrorHistogram) int {
	count := 0
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsError() || n.IsMissing() {
			count++
			origStart := posMap.ToOriginal(int(n.StartByte()))
			histogram.Record(pipeline.ErrorNode{
				Text: n.Content(src),
				Row:  int(n.StartPoint().Row) + 1,
				Col:  origStart,
			})
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return count
}

func extract(root *sitter.Node, src []byte, filePath string, lineCount int) *codeir.CodeIR {
	ir := &codeir.CodeIR{
		Module: &codeir.ModuleEntity{
			Path:      filePath,
			Language:  "c",
			LineCount: lineCount,
		},
	}

	var walk func(n *sitter.Node, isTopLevel bool)
	walk = func(n *sitter.Node, isTopLevel bool) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "preproc_include":
			if imp, ok := includeImport(n, src); ok {
				ir.Imports = append(ir.Imports, imp)
			}
			return
		case "function_definition":
			ir.Functions = append(ir.Functions, functionEntity(n, src))
			return
		case "struct_specifier", "union_specifier":
			if class, ok := recordEntity(n, src, n.Type() == "union_specifier"); ok {
				ir.Classes = append(ir.Classes, class)
			}
		case "enum_specifier":
			if class, ok := enumEntity(n, src); ok {
				ir.Classes = append(ir.Classes, class)
			}
		case "type_definition":
			if class, ok := typedefStructEntity(n, src); ok {
				ir.Classes = append(ir.Classes, class)
				return
			}
		case "ERROR":
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i), false)
		}
	}
	walk(root, true)

	collectCalls(root, src, ir)
	return ir
}

func includeImport(node *sitter.Node, src []byte) (codeir.ImportRelation, bool) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return codeir.ImportRelation{}, false
	}
	path := pathNode.Content(src)
	path = strings.Trim(path, "<>\"")
	return codeir.ImportRelation{Imported: path}, true
}

// declaratorName unwraps pointer_declarator/array_declarator/
// parenthesized_declarator/function_declarator layers to find the
// identifier at the core of a C declarator.
func declaratorName(node *sitter.Node, src []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "type_identifier":
			return node.Content(src)
		case "pointer_declarator", "array_declarator", "parenthesized_declarator", "abstract_pointer_declarator":
			node = node.ChildByFieldName("declarator")
		case "function_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			if inner := node.ChildByFieldName("declarator"); inner != nil {
				node = inner
				continue
			}
			return ""
		}
	}
	return ""
}

func functionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		if node.Type() == "function_declarator" {
			return node
		}
		inner := node.ChildByFieldName("declarator")
		if inner == nil {
			return nil
		}
		node = inner
	}
	return nil
}

func isStatic(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "storage_class_specifier" && child.Content(src) == "static" {
			return true
		}
		if child.IsNamed() && child.Type() != "storage_class_specifier" {
			break
		}
	}
	return false
}

func functionEntity(node *sitter.Node, src []byte) codeir.FunctionEntity {
	declaratorNode := node.ChildByFieldName("declarator")
	fnDecl := functionDeclarator(declaratorNode)

	name := ""
	if fnDecl != nil {
		name = declaratorName(fnDecl.ChildByFieldName("declarator"), src)
	}

	fn := codeir.FunctionEntity{
		Name:      name,
		IsStatic:  isStatic(node, src),
		LineStart: int(node.StartPoint().Row) + 1,
		LineEnd:   int(node.EndPoint().Row) + 1,
	}
	fn.Visibility = codeir.VisibilityPublic
	if fn.IsStatic {
		fn.Visibility = codeir.VisibilityPrivate
	}

	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		fn.ReturnType = typeNode.Content(src)
	}

	if fnDecl != nil {
		if params := fnDecl.ChildByFieldName("parameters"); params != nil {
			for i := 0; i < int(params.NamedChildCount()); i++ {
				p := params.NamedChild(i)
				switch p.Type() {
				case "variadic_parameter":
					fn.Parameters = append(fn.Parameters, codeir.Parameter{Name: "..."})
				case "parameter_declaration":
					param := codeir.Parameter{}
					if t := p.ChildByFieldName("type"); t != nil {
						param.Type = t.Content(src)
					}
					if d := p.ChildByFieldName("declarator"); d != nil {
						param.Name = declaratorName(d, src)
					}
					fn.Parameters = append(fn.Parameters, param)
				}
			}
		}
	}

	return fn
}

// recordEntity extracts struct_specifier/union_specifier into a
// ClassEntity. Anonymous records (no name field, used inline inside a
// typedef) return ok=false so the caller relies on typedefStructEntity
// to name them instead.
func recordEntity(node *sitter.Node, src []byte, isUnion bool) (codeir.ClassEntity, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return codeir.ClassEntity{}, false
	}
	// A struct_specifier/union_specifier with no body is a tag
	// reference ("struct Node *next"), not a definition; only the one
	// with a field_declaration_list defines the type.
	if node.ChildByFieldName("body") == nil {
		return codeir.ClassEntity{}, false
	}
	return buildRecordEntity(node, nameNode.Content(src), src, isUnion), true
}

func buildRecordEntity(node *sitter.Node, name string, src []byte, isUnion bool) codeir.ClassEntity {
	class := codeir.ClassEntity{
		Name:       name,
		Visibility: codeir.VisibilityPublic,
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
	}
	if isUnion {
		class.Attributes = append(class.Attributes, "union")
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return class
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		field := body.NamedChild(i)
		if field.Type() != "field_declaration" {
			continue
		}
		typeNode := field.ChildByFieldName("type")
		typeText := ""
		if typeNode != nil {
			typeText = typeNode.Content(src)
		}
		// named child 0 is always the type; every later named child
		// ("int a, b;" declares more than one) is a declarator.
		for j := 1; j < int(field.NamedChildCount()); j++ {
			declNode := field.NamedChild(j)
			fname := declaratorName(declNode, src)
			if fname == "" {
				continue
			}
			class.Fields = append(class.Fields, codeir.Field{
				Name:           fname,
				TypeAnnotation: typeText,
			})
		}
	}
	return class
}

func enumEntity(node *sitter.Node, src []byte) (codeir.ClassEntity, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return codeir.ClassEntity{}, false
	}
	if node.ChildByFieldName("body") == nil {
		return codeir.ClassEntity{}, false
	}
	class := codeir.ClassEntity{
		Name:       nameNode.Content(src),
		Visibility: codeir.VisibilityPublic,
		LineStart:  int(node.StartPoint().Row) + 1,
		LineEnd:    int(node.EndPoint().Row) + 1,
		Attributes: []string{"enum"},
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return class, true
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		enumerator := body.NamedChild(i)
		if enumerator.Type() != "enumerator" {
			continue
		}
		if nameN := enumerator.ChildByFieldName("name"); nameN != nil {
			class.Fields = append(class.Fields, codeir.Field{Name: nameN.Content(src), IsConstant: true})
		}
	}
	return class, true
}

// typedefStructEntity handles `typedef struct { ... } Name;`, naming
// an otherwise-anonymous struct/union after the typedef's alias. An
// anonymous enum behind a typedef is not handled here and yields false.
func typedefStructEntity(node *sitter.Node, src []byte) (codeir.ClassEntity, bool) {
	typeNode := node.ChildByFieldName("type")
	declaratorNode := node.ChildByFieldName("declarator")
	if typeNode == nil || declaratorNode == nil {
		return codeir.ClassEntity{}, false
	}
	alias := declaratorName(declaratorNode, src)
	if alias == "" {
		return codeir.ClassEntity{}, false
	}
	switch typeNode.Type() {
	case "struct_specifier":
		if typeNode.ChildByFieldName("name") != nil {
			return codeir.ClassEntity{}, false
		}
		return buildRecordEntity(typeNode, alias, src, false), true
	case "union_specifier":
		if typeNode.ChildByFieldName("name") != nil {
			return codeir.ClassEntity{}, false
		}
		return buildRecordEntity(typeNode, alias, src, true), true
	default:
		return codeir.ClassEntity{}, false
	}
}

// collectCalls walks function bodies for call_expression nodes,
// recording direct identifier calls and indirect ops->callback()
// style calls (the latter flagged IsMethod so later analysis can tell
// them apart from ordinary function calls).
func collectCalls(root *sitter.Node, src []byte, ir *codeir.CodeIR) {
	var walk func(node *sitter.Node, enclosingFunc string)
	walk = func(node *sitter.Node, enclosingFunc string) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "function_definition":
			fnDecl := functionDeclarator(node.ChildByFieldName("declarator"))
			if fnDecl != nil {
				enclosingFunc = declaratorName(fnDecl.ChildByFieldName("declarator"), src)
			}
		case "call_expression":
			if enclosingFunc != "" {
				if fnNode := node.ChildByFieldName("function"); fnNode != nil {
					if callee, isMethod := calleeName(fnNode, src); callee != "" {
						ir.Calls = append(ir.Calls, codeir.CallRelation{
							Caller:   enclosingFunc,
							Callee:   callee,
							Line:     int(node.StartPoint().Row) + 1,
							IsMethod: isMethod,
						})
					}
				}
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i), enclosingFunc)
		}
	}
	walk(root, "")
}

func calleeName(fnNode *sitter.Node, src []byte) (string, bool) {
	switch fnNode.Type() {
	case "identifier":
		return fnNode.Content(src), false
	case "field_expression":
		obj := fnNode.ChildByFieldName("argument")
		field := fnNode.ChildByFieldName("field")
		if obj == nil || field == nil {
			return "", false
		}
		return obj.Content(src) + "." + field.Content(src), true
	default:
		return "", false
	}
}
