package tcl

import "strings"

// designReadCommands maps a design-file read command to the file
// format it reads.
var designReadCommands = map[string]string{
	"read_verilog":    "verilog",
	"read_sverilog":   "systemverilog",
	"read_vhdl":       "vhdl",
	"read_liberty":    "liberty",
	"read_lib":        "liberty",
	"read_def":        "def",
	"read_lef":        "lef",
	"read_db":         "db",
	"read_spef":       "spef",
	"read_sdc":        "sdc",
	"read_parasitics":  "parasitics",
	"read_saif":       "saif",
	"read_sdf":        "sdf",
	"read_upf":        "upf",
	"read_file":       "generic",
}

// designWriteCommands maps a design-file write command to the file
// format it writes.
var designWriteCommands = map[string]string{
	"write_verilog":     "verilog",
	"write_def":         "def",
	"write_lef":         "lef",
	"write_db":          "db",
	"write_sdc":         "sdc",
	"write_sdf":         "sdf",
	"write_spef":        "spef",
	"write":             "generic",
	"write_file":        "generic",
	"write_abstract_lef": "abstract_lef",
	"write_cdl":         "cdl",
}

// toolFlowCommands maps an EDA tool-flow command to its flow
// category.
var toolFlowCommands = map[string]string{
	"compile":                   "synthesis",
	"synth_design":              "synthesis",
	"elaborate":                 "synthesis",
	"opt_design":                "synthesis",
	"initialize_floorplan":      "floorplan",
	"floorplan":                 "floorplan",
	"auto_place_pins":           "floorplan",
	"create_tracks":             "floorplan",
	"place_pins":                "floorplan",
	"global_placement":          "placement",
	"detailed_placement":        "placement",
	"place_design":              "placement",
	"optimize_mirroring":        "placement",
	"check_placement":           "placement",
	"clock_tree_synthesis":      "cts",
	"cts":                       "cts",
	"repair_clock_nets":         "cts",
	"global_route":              "routing",
	"detailed_route":            "routing",
	"route_design":              "routing",
	"repair_antennas":           "routing",
	"check_routing":             "routing",
	"report_timing":             "timing",
	"report_checks":             "timing",
	"report_wns":                "timing",
	"report_tns":                "timing",
	"estimate_parasitics":       "timing",
	"set_propagated_clock":      "timing",
	"report_power":              "power",
	"set_power_activity":        "power",
	"insert_clock_gate":         "power",
	"add_global_connection":     "physical",
	"create_power_domain":       "physical",
	"place_cell":                "physical",
	"create_voltage_domain":     "physical",
	"check_design":              "verification",
	"check_antennas":            "verification",
	"run_drc":                   "verification",
	"run_lvs":                   "verification",
	"verify_connectivity":       "verification",
	"link_design":               "synthesis",
	"remove_buffers":            "synthesis",
	"repair_design":             "placement",
	"repair_timing":             "timing",
	"resize":                    "timing",
	"estimate_wire_rc":          "timing",
}

// objectQueryCommands maps an object-query command to the object kind
// it selects.
var objectQueryCommands = map[string]string{
	"get_cells":       "cell",
	"get_pins":        "pin",
	"get_ports":       "port",
	"get_nets":        "net",
	"get_clocks":      "clock",
	"get_lib_cells":   "lib_cell",
	"get_lib_pins":    "lib_pin",
	"get_registers":   "register",
	"all_clocks":      "clock",
	"all_inputs":      "port",
	"all_outputs":     "port",
	"all_registers":   "register",
	"current_design":  "design",
	"current_instance": "instance",
}

// openroadPrefixes are namespace prefixes used by OpenROAD's Tcl
// command surface.
var openroadPrefixes = []string{
	"sta::", "ord::", "gpl::", "cts::", "drt::", "rcx::", "pdn::",
	"rsz::", "par::", "ppl::", "tap::", "grt::", "mpl::", "rmp::",
	"psm::", "utl::",
}

// miscEdaCommands is a fixed list of EDA-adjacent commands that don't
// belong to any of the four tables above.
var miscEdaCommands = map[string]bool{
	"define_cmd_args":       true,
	"get_attribute":         true,
	"set_attribute":         true,
	"foreach_in_collection": true,
	"sizeof_collection":     true,
	"add_to_collection":     true,
	"remove_from_collection": true,
	"filter_collection":     true,
	"sort_collection":       true,
	"index_collection":      true,
}

// IsOpenroadNamespaced reports whether name carries one of
// OpenROAD's namespace prefixes.
func IsOpenroadNamespaced(name string) bool {
	for _, p := range openroadPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// baseName strips a trailing "::"-namespaced prefix (e.g. "sta::foo"
// -> "foo").
func baseName(name string) string {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}
	return name
}

// IsEdaCommand reports whether name is a recognized EDA tool command,
// either directly or via its OpenROAD namespace prefix.
func IsEdaCommand(name string) bool {
	base := baseName(name)
	if _, ok := designReadCommands[base]; ok {
		return true
	}
	if _, ok := designWriteCommands[base]; ok {
		return true
	}
	if _, ok := toolFlowCommands[base]; ok {
		return true
	}
	if _, ok := objectQueryCommands[base]; ok {
		return true
	}
	if miscEdaCommands[base] {
		return true
	}
	return IsOpenroadNamespaced(name)
}

// EdaCommand is a classified EDA command invocation.
type EdaCommand struct {
	Kind           string `json:"kind"` // design_read, design_write, tool_flow, object_query, command_registration, collection_iteration, attribute_access
	Name           string `json:"name"`
	FileType       string `json:"file_type,omitempty"`
	Path           string `json:"path,omitempty"`
	Category       string `json:"category,omitempty"`
	CollectionType string `json:"collection_type,omitempty"`
	Variable       string `json:"variable,omitempty"`
	CollectionCmd  string `json:"collection_cmd,omitempty"`
	Object         string `json:"object,omitempty"`
	Attribute      string `json:"attribute,omitempty"`
	Usage          string `json:"usage,omitempty"`
}

// ClassifyEdaFromArgs classifies a command already known to satisfy
// IsEdaCommand into its EdaCommand shape.
func ClassifyEdaFromArgs(name string, args []string) EdaCommand {
	base := baseName(name)

	if fileType, ok := designReadCommands[base]; ok {
		return EdaCommand{Kind: "design_read", Name: name, FileType: fileType, Path: findFileArgument(args)}
	}
	if fileType, ok := designWriteCommands[base]; ok {
		return EdaCommand{Kind: "design_write", Name: name, FileType: fileType, Path: findFileArgument(args)}
	}
	if category, ok := toolFlowCommands[base]; ok {
		return EdaCommand{Kind: "tool_flow", Name: name, Category: category}
	}
	if collectionType, ok := objectQueryCommands[base]; ok {
		return EdaCommand{Kind: "object_query", Name: name, CollectionType: collectionType}
	}
	switch base {
	case "define_cmd_args":
		usage := ""
		if len(args) > 0 {
			usage = args[0]
		}
		return EdaCommand{Kind: "command_registration", Name: name, Usage: usage}
	case "foreach_in_collection":
		cmd := EdaCommand{Kind: "collection_iteration", Name: name}
		if len(args) > 0 {
			cmd.Variable = args[0]
		}
		if len(args) > 1 {
			cmd.CollectionCmd = args[1]
		}
		return cmd
	case "get_attribute", "set_attribute":
		cmd := EdaCommand{Kind: "attribute_access", Name: name}
		if len(args) > 0 {
			cmd.Object = args[0]
		}
		if len(args) > 1 {
			cmd.Attribute = args[1]
		}
		return cmd
	}
	if IsOpenroadNamespaced(name) {
		return EdaCommand{Kind: "tool_flow", Name: name, Category: "openroad"}
	}
	return EdaCommand{Kind: "tool_flow", Name: name, Category: "unknown"}
}

// findFileArgument returns the first positional (non-flag) argument,
// skipping any flag and its value.
func findFileArgument(args []string) string {
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			i++
			continue
		}
		return args[i]
	}
	return ""
}

// EdaData accumulates classified EDA commands observed in a source
// file, split by kind for JSON property attachment.
type EdaData struct {
	DesignReads        []EdaCommand
	DesignWrites       []EdaCommand
	RegisteredCommands []EdaCommand
}

// Record files cmd into the appropriate bucket.
func (d *EdaData) Record(cmd EdaCommand) {
	switch cmd.Kind {
	case "design_read":
		d.DesignReads = append(d.DesignReads, cmd)
	case "design_write":
		d.DesignWrites = append(d.DesignWrites, cmd)
	case "command_registration":
		d.RegisteredCommands = append(d.RegisteredCommands, cmd)
	}
}

// IsEmpty reports whether no EDA command of interest was recorded.
func (d *EdaData) IsEmpty() bool {
	return d == nil || (len(d.DesignReads) == 0 && len(d.DesignWrites) == 0 && len(d.RegisteredCommands) == 0)
}
