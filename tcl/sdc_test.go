package tcl

import "testing"

func TestExtractCreateClock(t *testing.T) {
	cmds := Tokenize(`create_clock -name clk -period 10 [get_ports clk]`)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command")
	}
	var data SdcData
	ExtractSdcFromArgs(&data, cmds[0].Name, cmds[0].Args)
	if len(data.Clocks) != 1 {
		t.Fatalf("expected 1 clock, got %d", len(data.Clocks))
	}
	clk := data.Clocks[0]
	if clk.Name != "clk" || clk.Period != "10" || clk.Port != "clk" {
		t.Fatalf("unexpected clock: %+v", clk)
	}
}

func TestExtractIoDelay(t *testing.T) {
	cmds := Tokenize(`set_input_delay -clock clk 2.5 [get_ports data_in]`)
	var data SdcData
	ExtractSdcFromArgs(&data, cmds[0].Name, cmds[0].Args)
	if len(data.IoDelays) != 1 {
		t.Fatalf("expected 1 io delay")
	}
	d := data.IoDelays[0]
	if d.DelayType != "input" || d.Clock != "clk" || d.Delay != "2.5" {
		t.Fatalf("unexpected io delay: %+v", d)
	}
}

func TestExtractTimingException(t *testing.T) {
	cmds := Tokenize(`set_false_path -from [get_ports a] -to [get_ports b]`)
	var data SdcData
	ExtractSdcFromArgs(&data, cmds[0].Name, cmds[0].Args)
	if len(data.TimingExceptions) != 1 {
		t.Fatalf("expected 1 timing exception")
	}
	exc := data.TimingExceptions[0]
	if exc.ExceptionType != "set_false_path" || exc.From != "[get_ports a]" || exc.To != "[get_ports b]" {
		t.Fatalf("unexpected exception: %+v", exc)
	}
}

func TestIsSdcCommand(t *testing.T) {
	if !IsSdcCommand("create_clock") {
		t.Fatal("expected create_clock to be an SDC command")
	}
	if IsSdcCommand("puts") {
		t.Fatal("did not expect puts to be an SDC command")
	}
}
