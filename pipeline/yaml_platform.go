package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDetectionPattern and yamlOpsStruct mirror DetectionPattern/
// OpsStructDef with yaml tags; the exported types stay free of
// serialization concerns, matching the module's existing split between
// the config types in parser.ParserConfig and whatever loads them.
type yamlDetectionPattern struct {
	Kind    string  `yaml:"kind"`
	Pattern string  `yaml:"pattern"`
	Weight  float32 `yaml:"weight"`
}

type yamlOpsField struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type yamlOpsStruct struct {
	StructName string         `yaml:"struct_name"`
	Fields     []yamlOpsField `yaml:"fields"`
}

// platformCatalogue is the on-disk shape a PlatformModule catalogue file
// is authored in: everything LinuxPlatform/FreeBSDPlatform hardcode as Go
// literals, expressed as YAML data instead, so adding a new platform (or
// tuning an existing one) doesn't require a code change.
type platformCatalogue struct {
	ID                 string                  `yaml:"id"`
	Name               string                  `yaml:"name"`
	DetectionPatterns  []yamlDetectionPattern  `yaml:"detection_patterns"`
	HeaderStubs        map[string]string       `yaml:"header_stubs"`
	AttributesToStrip  []string                `yaml:"attributes_to_strip"`
	OpsStructs         []yamlOpsStruct         `yaml:"ops_structs"`
	CallNormalizations map[string]string       `yaml:"call_normalizations"`
}

var detectionKindNames = map[string]DetectionKind{
	"include":      DetectionInclude,
	"macro":        DetectionMacro,
	"function_call": DetectionFunctionCall,
	"type_name":    DetectionTypeName,
}

var callbackCategoryNames = map[string]CallbackCategory{
	"init":      CallbackInit,
	"cleanup":   CallbackCleanup,
	"open":      CallbackOpen,
	"close":     CallbackClose,
	"read":      CallbackRead,
	"write":     CallbackWrite,
	"ioctl":     CallbackIoctl,
	"mmap":      CallbackMmap,
	"poll":      CallbackPoll,
	"probe":     CallbackProbe,
	"remove":    CallbackRemove,
	"suspend":   CallbackSuspend,
	"resume":    CallbackResume,
	"interrupt": CallbackInterrupt,
	"timer":     CallbackTimer,
	"workqueue": CallbackWorkqueue,
	"other":     CallbackOther,
}

// YAMLPlatform is a PlatformModule backed by a parsed platformCatalogue.
type YAMLPlatform struct {
	cat   platformCatalogue
	stubs *HeaderStubs
}

// LoadPlatformModule reads a platform catalogue from a YAML file and
// returns it as a ready-to-register PlatformModule.
func LoadPlatformModule(path string) (*YAMLPlatform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading platform catalogue %s: %w", path, err)
	}
	return ParsePlatformModule(data)
}

// ParsePlatformModule parses a platform catalogue from YAML bytes.
func ParsePlatformModule(data []byte) (*YAMLPlatform, error) {
	var cat platformCatalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing platform catalogue: %w", err)
	}
	if cat.ID == "" {
		return nil, fmt.Errorf("platform catalogue missing id")
	}
	stubs := NewHeaderStubs()
	for path, content := range cat.HeaderStubs {
		stubs.Add(path, content)
	}
	return &YAMLPlatform{cat: cat, stubs: stubs}, nil
}

func (p *YAMLPlatform) ID() string   { return p.cat.ID }
func (p *YAMLPlatform) Name() string { return p.cat.Name }

func (p *YAMLPlatform) DetectionPatterns() []DetectionPattern {
	out := make([]DetectionPattern, 0, len(p.cat.DetectionPatterns))
	for _, d := range p.cat.DetectionPatterns {
		out = append(out, DetectionPattern{
			Kind:    detectionKindNames[d.Kind],
			Pattern: d.Pattern,
			Weight:  d.Weight,
		})
	}
	return out
}

func (p *YAMLPlatform) HeaderStubs() *HeaderStubs { return p.stubs }

func (p *YAMLPlatform) AttributesToStrip() []string { return p.cat.AttributesToStrip }

func (p *YAMLPlatform) OpsStructs() []OpsStructDef {
	out := make([]OpsStructDef, 0, len(p.cat.OpsStructs))
	for _, s := range p.cat.OpsStructs {
		fields := make([]OpsFieldDef, 0, len(s.Fields))
		for _, f := range s.Fields {
			fields = append(fields, OpsFieldDef{Name: f.Name, Category: callbackCategoryNames[f.Category]})
		}
		out = append(out, OpsStructDef{StructName: s.StructName, Fields: fields})
	}
	return out
}

func (p *YAMLPlatform) CallNormalizations() map[string]string { return p.cat.CallNormalizations }
