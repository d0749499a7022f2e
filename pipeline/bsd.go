package pipeline

// FreeBSDPlatform and DarwinPlatform are illustrative stubs: a single
// detection pattern and header stub each, enough to show the
// PlatformModule interface covers more than Linux without pretending
// to a full tabular catalogue for either platform.
// Registering a complete catalogue for either is a matter of filling
// in DetectionPatterns/AttributesToStrip/OpsStructs the way linux.go
// does; nothing about the registry or pipeline stages is Linux-specific.
type FreeBSDPlatform struct {
	stubs *HeaderStubs
}

func NewFreeBSDPlatform() *FreeBSDPlatform {
	stubs := NewHeaderStubs()
	stubs.Add("sys/param.h", "typedef unsigned long u_long;\ntypedef unsigned int u_int;")
	return &FreeBSDPlatform{stubs: stubs}
}

func (p *FreeBSDPlatform) ID() string   { return "freebsd" }
func (p *FreeBSDPlatform) Name() string { return "FreeBSD Kernel" }

func (p *FreeBSDPlatform) DetectionPatterns() []DetectionPattern {
	return []DetectionPattern{
		{Kind: DetectionInclude, Pattern: "sys/param.h", Weight: 3.0},
		{Kind: DetectionMacro, Pattern: "SYSCTL_NODE", Weight: 2.0},
	}
}

func (p *FreeBSDPlatform) HeaderStubs() *HeaderStubs       { return p.stubs }
func (p *FreeBSDPlatform) AttributesToStrip() []string     { return []string{"__unused"} }
func (p *FreeBSDPlatform) OpsStructs() []OpsStructDef       { return nil }
func (p *FreeBSDPlatform) CallNormalizations() map[string]string { return nil }

type DarwinPlatform struct {
	stubs *HeaderStubs
}

func NewDarwinPlatform() *DarwinPlatform {
	stubs := NewHeaderStubs()
	stubs.Add("mach/mach_types.h", "typedef unsigned int mach_port_t;")
	return &DarwinPlatform{stubs: stubs}
}

func (p *DarwinPlatform) ID() string   { return "darwin" }
func (p *DarwinPlatform) Name() string { return "Darwin/XNU Kernel" }

func (p *DarwinPlatform) DetectionPatterns() []DetectionPattern {
	return []DetectionPattern{
		{Kind: DetectionInclude, Pattern: "mach/mach_types.h", Weight: 3.0},
		{Kind: DetectionMacro, Pattern: "IOKit", Weight: 2.0},
	}
}

func (p *DarwinPlatform) HeaderStubs() *HeaderStubs       { return p.stubs }
func (p *DarwinPlatform) AttributesToStrip() []string     { return []string{"__attribute__((visibility(\"default\")))"} }
func (p *DarwinPlatform) OpsStructs() []OpsStructDef       { return nil }
func (p *DarwinPlatform) CallNormalizations() map[string]string { return nil }
