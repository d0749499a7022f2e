package parser

import (
	"fmt"
	"time"

	"github.com/viant/codegraph/codeir"
	"github.com/viant/codegraph/graphstore"
)

// IRToGraph lowers a CodeIR into graph nodes and edges and returns the
// FileInfo describing what was created. Shared by every frontend's
// ParseSource so the node/edge shape stays consistent across languages.
//
// It creates: one CodeFile node; Function nodes linked Contains from
// their parent class if any, else from the file; Class/Trait nodes
// linked Contains from the file; a Module node per import (reused
// across files by name) linked Imports from the file; Calls edges for
// callees resolvable within this file, with the rest accumulated on an
// "unresolved_calls" string-list property on the caller for later
// project-wide resolution; Extends edges for inheritance;
// Implements edges for implementation relations.
func IRToGraph(ir *codeir.CodeIR, store *graphstore.Store, filePath string) (FileInfo, error) {
	start := time.Now()
	info := FileInfo{FilePath: filePath}

	fileProps := graphstore.PropertyMap{"path": graphstore.String(filePath)}
	if ir.Module != nil {
		fileProps["name"] = graphstore.String(ir.Module.Name)
		fileProps["language"] = graphstore.String(ir.Module.Language)
		fileProps["line_count"] = graphstore.Int(int64(ir.Module.LineCount))
		if ir.Module.Doc != "" {
			fileProps["doc"] = graphstore.String(ir.Module.Doc)
		}
		info.LineCount = ir.Module.LineCount
	}
	fileID, err := store.AddNode(graphstore.NodeCodeFile, fileProps)
	if err != nil {
		return info, fmt.Errorf("mapping file node for %s: %w", filePath, err)
	}
	info.FileID = fileID

	// qualifiedName -> node id, for intra-file Calls/Extends/Implements resolution.
	byQualifiedName := map[string]uint64{}

	classIDs := make(map[string]uint64, len(ir.Classes))
	for _, class := range ir.Classes {
		classID, err := addClassNode(store, class, fileID)
		if err != nil {
			return info, err
		}
		classIDs[class.Name] = classID
		byQualifiedName[class.Name] = classID
		info.Classes = append(info.Classes, classID)

		for _, method := range class.Methods {
			method.ParentClass = class.Name
			fnID, err := addFunctionNode(store, method, classID)
			if err != nil {
				return info, err
			}
			byQualifiedName[class.Name+"."+method.Name] = fnID
			info.Functions = append(info.Functions, fnID)
		}
	}

	for _, trait := range ir.Traits {
		traitID, err := addTraitNode(store, trait, fileID)
		if err != nil {
			return info, err
		}
		byQualifiedName[trait.Name] = traitID
		info.Traits = append(info.Traits, traitID)
	}

	for _, fn := range ir.Functions {
		if fn.ParentClass != "" {
			// Already emitted above as a class method.
			continue
		}
		fnID, err := addFunctionNode(store, fn, fileID)
		if err != nil {
			return info, err
		}
		byQualifiedName[fn.Name] = fnID
		info.Functions = append(info.Functions, fnID)
	}

	moduleCache := map[string]uint64{}
	for _, imp := range ir.Imports {
		modID, err := resolveOrCreateModule(store, moduleCache, imp.Imported)
		if err != nil {
			return info, err
		}
		edgeProps := graphstore.PropertyMap{}
		if len(imp.Symbols) > 0 {
			edgeProps["symbols"] = graphstore.StringList(imp.Symbols)
		}
		if imp.Wildcard {
			edgeProps["wildcard"] = graphstore.Bool(true)
		}
		if imp.Alias != "" {
			edgeProps["alias"] = graphstore.String(imp.Alias)
		}
		if _, err := store.AddEdge(fileID, modID, graphstore.EdgeImports, edgeProps); err != nil {
			return info, fmt.Errorf("mapping import %s in %s: %w", imp.Imported, filePath, err)
		}
		info.Imports = append(info.Imports, modID)
	}

	unresolvedByCaller := map[string][]string{}
	for _, call := range ir.Calls {
		callerID, ok := byQualifiedName[call.Caller]
		if !ok {
			continue
		}
		if calleeID, ok := byQualifiedName[call.Callee]; ok {
			props := graphstore.PropertyMap{"line": graphstore.Int(int64(call.Line))}
			if call.IsMethod {
				props["is_method"] = graphstore.Bool(true)
			}
			if _, err := store.AddEdge(callerID, calleeID, graphstore.EdgeCalls, props); err != nil {
				return info, fmt.Errorf("mapping call %s -> %s in %s: %w", call.Caller, call.Callee, filePath, err)
			}
			continue
		}
		unresolvedByCaller[call.Caller] = append(unresolvedByCaller[call.Caller], call.Callee)
	}
	for caller, callees := range unresolvedByCaller {
		callerID, ok := byQualifiedName[caller]
		if !ok {
			continue
		}
		if err := store.WithNodeMut(callerID, func(n *graphstore.Node) {
			existing, _ := n.Properties.GetStringList("unresolved_calls")
			n.Properties["unresolved_calls"] = graphstore.StringList(append(existing, callees...))
		}); err != nil {
			return info, fmt.Errorf("recording unresolved calls for %s in %s: %w", caller, filePath, err)
		}
	}

	for _, inh := range ir.Inheritance {
		childID, childOK := byQualifiedName[inh.Child]
		parentID, parentOK := byQualifiedName[inh.Parent]
		if !childOK || !parentOK {
			continue
		}
		props := graphstore.PropertyMap{"order": graphstore.Int(int64(inh.Order))}
		if _, err := store.AddEdge(childID, parentID, graphstore.EdgeExtends, props); err != nil {
			return info, fmt.Errorf("mapping inheritance %s -> %s in %s: %w", inh.Child, inh.Parent, filePath, err)
		}
	}

	for _, impl := range ir.Implementations {
		implID, implOK := byQualifiedName[impl.Implementor]
		traitID, traitOK := byQualifiedName[impl.TraitName]
		if !implOK || !traitOK {
			continue
		}
		if _, err := store.AddEdge(implID, traitID, graphstore.EdgeImplements, nil); err != nil {
			return info, fmt.Errorf("mapping implementation %s -> %s in %s: %w", impl.Implementor, impl.TraitName, filePath, err)
		}
	}

	info.ParseTime = time.Since(start)
	return info, nil
}

func addClassNode(store *graphstore.Store, class codeir.ClassEntity, fileID uint64) (uint64, error) {
	props := graphstore.PropertyMap{
		"name":       graphstore.String(class.Name),
		"visibility": graphstore.String(string(class.Visibility)),
		"line_start": graphstore.Int(int64(class.LineStart)),
		"line_end":   graphstore.Int(int64(class.LineEnd)),
	}
	if class.IsAbstract {
		props["is_abstract"] = graphstore.Bool(true)
	}
	if len(class.BaseClasses) > 0 {
		props["base_classes"] = graphstore.StringList(class.BaseClasses)
	}
	if len(class.ImplementedTraits) > 0 {
		props["implemented_traits"] = graphstore.StringList(class.ImplementedTraits)
	}
	if class.Doc != "" {
		props["doc"] = graphstore.String(class.Doc)
	}
	nodeType := graphstore.NodeClass
	if class.IsInterface {
		nodeType = graphstore.NodeInterface
	}
	id, err := store.AddNode(nodeType, props)
	if err != nil {
		return 0, fmt.Errorf("mapping class %s: %w", class.Name, err)
	}
	if _, err := store.AddEdge(fileID, id, graphstore.EdgeContains, nil); err != nil {
		return 0, fmt.Errorf("mapping file-contains-class %s: %w", class.Name, err)
	}
	return id, nil
}

func addTraitNode(store *graphstore.Store, trait codeir.TraitEntity, fileID uint64) (uint64, error) {
	props := graphstore.PropertyMap{
		"name":       graphstore.String(trait.Name),
		"line_start": graphstore.Int(int64(trait.LineStart)),
		"line_end":   graphstore.Int(int64(trait.LineEnd)),
	}
	if trait.Doc != "" {
		props["doc"] = graphstore.String(trait.Doc)
	}
	id, err := store.AddNode(graphstore.NodeTrait, props)
	if err != nil {
		return 0, fmt.Errorf("mapping trait %s: %w", trait.Name, err)
	}
	if _, err := store.AddEdge(fileID, id, graphstore.EdgeContains, nil); err != nil {
		return 0, fmt.Errorf("mapping file-contains-trait %s: %w", trait.Name, err)
	}
	return id, nil
}

func addFunctionNode(store *graphstore.Store, fn codeir.FunctionEntity, containerID uint64) (uint64, error) {
	props := graphstore.PropertyMap{
		"name":       graphstore.String(fn.Name),
		"visibility": graphstore.String(string(fn.Visibility)),
		"line_start": graphstore.Int(int64(fn.LineStart)),
		"line_end":   graphstore.Int(int64(fn.LineEnd)),
		"hash":       graphstore.Int(int64(fn.Hash())),
	}
	if fn.Signature != "" {
		props["signature"] = graphstore.String(fn.Signature)
	}
	if fn.IsAsync {
		props["is_async"] = graphstore.Bool(true)
	}
	if fn.IsTest {
		props["is_test"] = graphstore.Bool(true)
	}
	if fn.IsStatic {
		props["is_static"] = graphstore.Bool(true)
	}
	if fn.IsAbstract {
		props["is_abstract"] = graphstore.Bool(true)
	}
	if fn.ReturnType != "" {
		props["return_type"] = graphstore.String(fn.ReturnType)
	}
	if fn.Doc != "" {
		props["doc"] = graphstore.String(fn.Doc)
	}
	if len(fn.Decorators) > 0 {
		props["decorators"] = graphstore.StringList(fn.Decorators)
	}
	if fn.ParentClass != "" {
		props["parent_class"] = graphstore.String(fn.ParentClass)
	}
	if len(fn.Parameters) > 0 {
		names := make([]string, len(fn.Parameters))
		for i, p := range fn.Parameters {
			names[i] = p.Name
		}
		props["parameters"] = graphstore.StringList(names)
	}
	if fn.Complexity != nil {
		props["cyclomatic_complexity"] = graphstore.Int(int64(fn.Complexity.CyclomaticComplexity))
		props["complexity_grade"] = graphstore.String(string(fn.Complexity.Grade()))
	}

	id, err := store.AddNode(graphstore.NodeFunction, props)
	if err != nil {
		return 0, fmt.Errorf("mapping function %s: %w", fn.Name, err)
	}
	if _, err := store.AddEdge(containerID, id, graphstore.EdgeContains, nil); err != nil {
		return 0, fmt.Errorf("mapping contains-function %s: %w", fn.Name, err)
	}
	return id, nil
}

// resolveOrCreateModule returns the Module node ID for name, reusing an
// existing node already created for it within this process (moduleCache)
// or found in the store from a prior file, and creating one otherwise.
func resolveOrCreateModule(store *graphstore.Store, moduleCache map[string]uint64, name string) (uint64, error) {
	if id, ok := moduleCache[name]; ok {
		return id, nil
	}
	for _, id := range store.NodeIDsByType(graphstore.NodeModule) {
		n, err := store.GetNode(id)
		if err != nil {
			continue
		}
		if existing, ok := n.Properties.GetString("name"); ok && existing == name {
			moduleCache[name] = id
			return id, nil
		}
	}
	id, err := store.AddNode(graphstore.NodeModule, graphstore.PropertyMap{"name": graphstore.String(name)})
	if err != nil {
		return 0, fmt.Errorf("mapping module %s: %w", name, err)
	}
	moduleCache[name] = id
	return id, nil
}
