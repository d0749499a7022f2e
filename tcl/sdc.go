package tcl

import "strings"

// SdcClock is a create_clock/create_generated_clock constraint.
type SdcClock struct {
	Name   string `json:"name"`
	Period string `json:"period"`
	Port   string `json:"port"`
}

// SdcIoDelay is a set_input_delay/set_output_delay constraint.
type SdcIoDelay struct {
	DelayType string `json:"delay_type"`
	Clock     string `json:"clock"`
	Delay     string `json:"delay"`
}

// SdcTimingException is a false-path/multicycle/max-delay/min-delay
// style exception.
type SdcTimingException struct {
	ExceptionType string `json:"exception_type"`
	From          string `json:"from"`
	To            string `json:"to"`
	Value         string `json:"value"`
}

// SdcData accumulates every SDC constraint observed in a source file.
type SdcData struct {
	Clocks            []SdcClock
	IoDelays          []SdcIoDelay
	TimingExceptions  []SdcTimingException
}

// IsEmpty reports whether no SDC constraint was recorded.
func (d *SdcData) IsEmpty() bool {
	return d == nil || (len(d.Clocks) == 0 && len(d.IoDelays) == 0 && len(d.TimingExceptions) == 0)
}

// sdcCommands is the set of SDC constraint commands this scanner
// recognizes.
var sdcCommands = map[string]bool{
	"create_clock":           true,
	"create_generated_clock": true,
	"set_input_delay":        true,
	"set_output_delay":       true,
	"set_false_path":         true,
	"set_multicycle_path":    true,
	"set_max_delay":          true,
	"set_min_delay":          true,
	"set_clock_uncertainty":  true,
	"set_clock_latency":      true,
	"set_clock_groups":       true,
	"set_max_fanout":         true,
	"set_max_transition":     true,
	"set_max_capacitance":    true,
	"set_load":               true,
	"set_driving_cell":       true,
	"set_input_transition":   true,
	"set_propagated_clock":   true,
	"group_path":             true,
}

// IsSdcCommand reports whether name is a recognized SDC constraint
// command.
func IsSdcCommand(name string) bool {
	return sdcCommands[name]
}

// ExtractSdcFromArgs records the constraint for the named SDC command
// into data, dispatching on command kind.
func ExtractSdcFromArgs(data *SdcData, name string, args []string) {
	switch name {
	case "create_clock", "create_generated_clock":
		data.Clocks = append(data.Clocks, extractCreateClock(args))
	case "set_input_delay":
		data.IoDelays = append(data.IoDelays, extractIoDelay("input", args))
	case "set_output_delay":
		data.IoDelays = append(data.IoDelays, extractIoDelay("output", args))
	case "set_false_path", "set_multicycle_path", "set_max_delay", "set_min_delay":
		data.TimingExceptions = append(data.TimingExceptions, extractTimingException(name, args))
	}
}

// extractCreateClock parses -name/-period/-port(ed positionally) flags
// out of a create_clock/create_generated_clock argument list, falling
// back to bracket-extraction for the port/pin target.
func extractCreateClock(args []string) SdcClock {
	var clk SdcClock
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-name":
			if i+1 < len(args) {
				clk.Name = args[i+1]
				i++
			}
		case "-period":
			if i+1 < len(args) {
				clk.Period = args[i+1]
				i++
			}
		case "-waveform", "-add", "-comment":
			i++
		default:
			if !strings.HasPrefix(args[i], "-") {
				if port, ok := extractPortFromBracket(args[i]); ok {
					clk.Port = port
				} else if clk.Port == "" {
					clk.Port = args[i]
				}
			}
		}
	}
	return clk
}

// extractIoDelay parses -clock and a positional delay value out of a
// set_input_delay/set_output_delay argument list.
func extractIoDelay(kind string, args []string) SdcIoDelay {
	delay := SdcIoDelay{DelayType: kind}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-clock":
			if i+1 < len(args) {
				delay.Clock = args[i+1]
				i++
			}
		case "-max", "-min", "-add_delay", "-rise", "-fall":
			// flags with no value to skip
		default:
			if !strings.HasPrefix(args[i], "-") && delay.Delay == "" {
				delay.Delay = args[i]
			}
		}
	}
	return delay
}

// extractTimingException parses -from/-to and a trailing numeric value
// (for multicycle/max_delay/min_delay) out of a timing-exception
// command's argument list.
func extractTimingException(kind string, args []string) SdcTimingException {
	exc := SdcTimingException{ExceptionType: kind}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-from":
			if i+1 < len(args) {
				exc.From = args[i+1]
				i++
			}
		case "-to":
			if i+1 < len(args) {
				exc.To = args[i+1]
				i++
			}
		case "-setup", "-hold", "-rise", "-fall":
			// no value
		default:
			if !strings.HasPrefix(args[i], "-") {
				exc.Value = args[i]
			}
		}
	}
	return exc
}

// extractPortFromBracket pulls the target name out of a
// "[get_ports X]" / "[get_clocks X]" style command-substitution word.
func extractPortFromBracket(word string) (string, bool) {
	trimmed := strings.TrimSpace(word)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
	fields := strings.Fields(inner)
	if len(fields) < 2 {
		return "", false
	}
	target := strings.Join(fields[1:], " ")
	target = strings.Trim(target, "{}")
	return target, true
}
