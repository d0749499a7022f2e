// Package tcl is the Tcl frontend: plain .tcl scripts, .sdc timing
// constraints, and .upf power-intent files. Unlike every other
// frontend it has no tree-sitter grammar to walk; it scans source into
// top-level commands with tcl.Tokenize and classifies each command
// directly, grounded on codegraph-tcl's parser_impl.rs/sdc.rs/eda.rs
// and generalized from lang/rust's CodeParser shape.
package tcl

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
	cgparser "github.com/viant/codegraph/parser"
	"github.com/viant/codegraph/registry"
	"github.com/viant/codegraph/tcl"
)

func init() {
	registry.Register("tcl", []string{".tcl", ".sdc", ".upf"}, func(cfg cgparser.ParserConfig) cgparser.CodeParser {
		return New(cfg)
	})
}

// Frontend is the Tcl CodeParser implementation.
type Frontend struct {
	cfg  cgparser.ParserConfig
	last *Diagnostics
	cgparser.MetricsRecorder
}

// Diagnostics carries the SDC/EDA data the last ParseSource call
// extracted, for callers that want more than the graph node
// properties expose.
type Diagnostics struct {
	Sdc tcl.SdcData
	Eda tcl.EdaData
}

func New(cfg cgparser.ParserConfig) *Frontend { return &Frontend{cfg: cfg} }

func (f *Frontend) Language() string              { return "tcl" }
func (f *Frontend) FileExtensions() []string      { return []string{".tcl", ".sdc", ".upf"} }
func (f *Frontend) Config() cgparser.ParserConfig { return f.cfg }

func (f *Frontend) CanParse(path string) bool {
	ext := strings.ToLower(pathExt(path))
	return ext == ".tcl" || ext == ".sdc" || ext == ".upf"
}

func (f *Frontend) DiscoverFiles(dir string) ([]string, error) {
	return cgparser.DiscoverFiles(dir, f.FileExtensions(), f.cfg.ExcludeDirs)
}

// LastDiagnostics returns the SDC/EDA data gathered by the most recent
// ParseSource call, or nil if none has run yet.
func (f *Frontend) LastDiagnostics() *Diagnostics { return f.last }

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

	commands := tcl.Tokenize(source)
	ir, sdcData, edaData := extract(commands, source, filePath)
	f.last = &Diagnostics{Sdc: sdcData, Eda: edaData}

	info, err := cgparser.IRToGraph(ir, store, filePath)
	if err != nil {
		return info, err
	}
	if err := attachDiagnostics(store, info.FileID, sdcData, edaData); err != nil {
		return info, err
	}

	info.ParseTime = time.Since(start)
	return info, nil
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

// attachDiagnostics merges SDC/EDA JSON-encoded properties onto the
// file node IRToGraph already created. WithNodeMut decodes, mutates,
// and re-encodes the existing node in place, so the name/path/
// language/line_count/doc properties IRToGraph set survive untouched.
func attachDiagnostics(store *graphstore.Store, fileID uint64, sdc tcl.SdcData, eda tcl.EdaData) error {
	if sdc.IsEmpty() && eda.IsEmpty() {
		return nil
	}
	return store.WithNodeMut(fileID, func(n *graphstore.Node) {
		if n.Properties == nil {
			n.Properties = graphstore.PropertyMap{}
		}
		if len(sdc.Clocks) > 0 {
			n.Properties["sdc_clocks"] = graphstore.String(encodeJSON(sdc.Clocks))
		}
		if len(sdc.IoDelays) > 0 {
			n.Properties["sdc_io_delays"] = graphstore.String(encodeJSON(sdc.IoDelays))
		}
		if len(sdc.TimingExceptions) > 0 {
			n.Properties["sdc_timing_exceptions"] = graphstore.String(encodeJSON(sdc.TimingExceptions))
		}
		if len(eda.DesignReads) > 0 {
			n.Properties["eda_design_reads"] = graphstore.String(encodeJSON(eda.DesignReads))
		}
		if len(eda.DesignWrites) > 0 {
			n.Properties["eda_design_writes"] = graphstore.String(encodeJSON(eda.DesignWrites))
		}
		if len(eda.RegisteredCommands) > 0 {
			n.Properties["eda_registered_commands"] = graphstore.String(encodeJSON(eda.RegisteredCommands))
		}
	})
}

// builtinCommands are Tcl/SDC/EDA control-structure and core commands
// that never count as a call to a user-defined proc.
var builtinCommands = map[string]bool{
	"set": true, "if": true, "elseif": true, "else": true, "for": true,
	"foreach": true, "while": true, "switch": true, "return": true,
	"puts": true, "proc": true, "namespace": true, "expr": true,
	"incr": true, "append": true, "lappend": true, "list": true,
	"lindex": true, "llength": true, "lrange": true, "lsort": true,
	"string": true, "array": true, "dict": true, "catch": true,
	"error": true, "uplevel": true, "upvar": true, "variable": true,
	"global": true, "source": true, "package": true, "eval": true,
	"break": true, "continue": true, "exit": true, "info": true,
	"format": true, "regexp": true, "regsub": true, "split": true,
	"join": true, "concat": true, "subst": true, "time": true,
}

// extract walks the scanned command list into a CodeIR plus the SDC
// and EDA data accumulated along the way.
func extract(commands []tcl.Command, source, filePath string) (*codeir.CodeIR, tcl.SdcData, tcl.EdaData) {
	ir := &codeir.CodeIR{
		Module: &codeir.ModuleEntity{
			Name:      baseFileName(filePath),
			Path:      filePath,
			Language:  "tcl",
			LineCount: strings.Count(source, "\n") + 1,
		},
	}

	var sdcData tcl.SdcData
	var edaData tcl.EdaData

	i := 0
	for i < len(commands) {
		cmd := commands[i]
		switch cmd.Name {
		case "proc":
			fn, consumed := procFunction(commands, i)
			ir.Functions = append(ir.Functions, fn)
			if len(cmd.Args) > 2 {
				collectCalls(fn.Name, bodyText(cmd.Args[2]), ir)
			}
			i += consumed
			continue
		case "namespace":
			if len(cmd.Args) >= 2 && cmd.Args[0] == "eval" {
				ns, consumed := namespaceClass(commands, i, ir)
				ir.Classes = append(ir.Classes, ns)
				i += consumed
				continue
			}
		case "source":
			if len(cmd.Args) > 0 {
				ir.Imports = append(ir.Imports, codeir.ImportRelation{Importer: ir.Module.Name, Imported: unquote(cmd.Args[0])})
			}
		case "package":
			if len(cmd.Args) >= 2 && cmd.Args[0] == "require" {
				ir.Imports = append(ir.Imports, codeir.ImportRelation{Importer: ir.Module.Name, Imported: cmd.Args[1]})
			}
		}

		if tcl.IsSdcCommand(cmd.Name) {
			tcl.ExtractSdcFromArgs(&sdcData, cmd.Name, cmd.Args)
		}
		if tcl.IsEdaCommand(cmd.Name) {
			classified := tcl.ClassifyEdaFromArgs(cmd.Name, cmd.Args)
			edaData.Record(classified)
			if classified.Kind == "design_read" {
				ir.Imports = append(ir.Imports, codeir.ImportRelation{Importer: ir.Module.Name, Imported: classified.Path})
			}
		}
		i++
	}

	return ir, sdcData, edaData
}

// procFunction builds a FunctionEntity from a "proc name {params}
// {body}" command and returns how many scanned commands it consumed
// (always 1: the scanner treats the whole proc invocation, body
// included, as one command since the body is brace-grouped). Calls
// inside the body are recorded separately by collectCalls.
func procFunction(commands []tcl.Command, idx int) (codeir.FunctionEntity, int) {
	cmd := commands[idx]
	fn := codeir.FunctionEntity{
		Visibility: codeir.VisibilityPublic,
		LineStart:  cmd.Line,
		LineEnd:    cmd.Line,
	}
	if len(cmd.Args) > 0 {
		fn.Name = cmd.Args[0]
	}
	if len(cmd.Args) > 1 {
		fn.Parameters = parseProcParams(cmd.Args[1])
	}
	return fn, 1
}

// bodyText strips one layer of the brace grouping the scanner keeps
// around a proc/control-structure body word.
func bodyText(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// collectCalls records a CallRelation from caller to every
// non-builtin command name invoked in body, then recurses into any
// brace-grouped argument (an if/for/foreach/while/namespace block) so
// calls nested inside control structures are still found.
func collectCalls(caller, body string, ir *codeir.CodeIR) {
	for _, cmd := range tcl.Tokenize(body) {
		if cmd.Name == "proc" {
			continue
		}
		if !builtinCommands[cmd.Name] && isIdentifierLike(cmd.Name) {
			ir.Calls = append(ir.Calls, codeir.CallRelation{Caller: caller, Callee: cmd.Name, Line: cmd.Line})
		}
		for _, a := range cmd.Args {
			if strings.HasPrefix(a, "{") && strings.HasSuffix(a, "}") {
				collectCalls(caller, bodyText(a), ir)
			}
		}
	}
}

func isIdentifierLike(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// parseProcParams splits a proc's brace-grouped parameter list into
// Parameters, honoring "{name default}" optional-parameter pairs.
func parseProcParams(raw string) []codeir.Parameter {
	inner := strings.TrimSpace(strings.Trim(raw, "{}"))
	if inner == "" {
		return nil
	}
	words := splitTopLevel(inner)
	params := make([]codeir.Parameter, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if strings.HasPrefix(w, "{") && strings.HasSuffix(w, "}") {
			pair := splitTopLevel(strings.Trim(w, "{}"))
			if len(pair) >= 2 {
				params = append(params, codeir.Parameter{Name: pair[0], Default: pair[1]})
				continue
			}
			if len(pair) == 1 {
				params = append(params, codeir.Parameter{Name: pair[0]})
				continue
			}
		}
		params = append(params, codeir.Parameter{Name: w})
	}
	return params
}

// splitTopLevel splits on whitespace while respecting nested braces.
func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	var cur strings.Builder
	for _, r := range s {
		switch r {
		case '{':
			depth++
			cur.WriteRune(r)
		case '}':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case ' ', '\t':
			if depth == 0 {
				if cur.Len() > 0 {
					out = append(out, cur.String())
					cur.Reset()
				}
				continue
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// namespaceClass builds a ClassEntity from "namespace eval name body",
// recursing the scanner over the body so nested procs become Methods
// that IRToGraph Contains-links from the namespace's Class node.
func namespaceClass(commands []tcl.Command, idx int, ir *codeir.CodeIR) (codeir.ClassEntity, int) {
	cmd := commands[idx]
	name := cmd.Args[1]
	body := ""
	if len(cmd.Args) > 2 {
		body = bodyText(cmd.Args[2])
	}

	ns := codeir.ClassEntity{
		Name:       name,
		Visibility: codeir.VisibilityPublic,
		LineStart:  cmd.Line,
		LineEnd:    cmd.Line,
	}

	nested := tcl.Tokenize(body)
	for j := 0; j < len(nested); j++ {
		if nested[j].Name == "proc" {
			fn, _ := procFunction(nested, j)
			fn.ParentClass = name
			ns.Methods = append(ns.Methods, fn)
			if len(nested[j].Args) > 2 {
				collectCalls(name+"."+fn.Name, bodyText(nested[j].Args[2]), ir)
			}
		}
	}

	return ns, 1
}

func unquote(s string) string {
	return strings.Trim(s, "\"")
}

func encodeJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func baseFileName(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
