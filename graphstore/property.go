package graphstore

// PropertyValue is a tagged union of the value kinds a property can hold.
// Exactly one field is meaningful, selected by Kind.
type PropertyValue struct {
	Kind       PropertyKind
	StringVal  string
	IntVal     int64
	FloatVal   float64
	BoolVal    bool
	StringList []string
	IntList    []int64
}

// PropertyKind tags which field of PropertyValue is populated.
type PropertyKind int

const (
	KindNull PropertyKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindStringList
	KindIntList
)

func String(v string) PropertyValue          { return PropertyValue{Kind: KindString, StringVal: v} }
func Int(v int64) PropertyValue              { return PropertyValue{Kind: KindInt, IntVal: v} }
func Float(v float64) PropertyValue          { return PropertyValue{Kind: KindFloat, FloatVal: v} }
func Bool(v bool) PropertyValue              { return PropertyValue{Kind: KindBool, BoolVal: v} }
func StringList(v []string) PropertyValue    { return PropertyValue{Kind: KindStringList, StringList: append([]string(nil), v...)} }
func IntList(v []int64) PropertyValue        { return PropertyValue{Kind: KindIntList, IntList: append([]int64(nil), v...)} }
func Null() PropertyValue                    { return PropertyValue{Kind: KindNull} }

func (v PropertyValue) clone() PropertyValue {
	c := v
	if v.StringList != nil {
		c.StringList = append([]string(nil), v.StringList...)
	}
	if v.IntList != nil {
		c.IntList = append([]int64(nil), v.IntList...)
	}
	return c
}

// PropertyMap is an unordered string-keyed map of application-defined
// properties. The store does not validate keys; typed access returns
// (value, false) on both absence and type mismatch.
type PropertyMap map[string]PropertyValue

// NewPropertyMap returns an empty, ready-to-use PropertyMap.
func NewPropertyMap() PropertyMap { return make(PropertyMap) }

// Clone returns a deep copy of the map.
func (p PropertyMap) Clone() PropertyMap {
	if p == nil {
		return nil
	}
	out := make(PropertyMap, len(p))
	for k, v := range p {
		out[k] = v.clone()
	}
	return out
}

func (p PropertyMap) GetString(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.StringVal, true
}

func (p PropertyMap) GetInt(key string) (int64, bool) {
	v, ok := p[key]
	if !ok || v.Kind != KindInt {
		return 0, false
	}
	return v.IntVal, true
}

func (p PropertyMap) GetFloat(key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v.Kind != KindFloat {
		return 0, false
	}
	return v.FloatVal, true
}

func (p PropertyMap) GetBool(key string) (bool, bool) {
	v, ok := p[key]
	if !ok || v.Kind != KindBool {
		return false, false
	}
	return v.BoolVal, true
}

func (p PropertyMap) GetStringList(key string) ([]string, bool) {
	v, ok := p[key]
	if !ok || v.Kind != KindStringList {
		return nil, false
	}
	return v.StringList, true
}

func (p PropertyMap) GetIntList(key string) ([]int64, bool) {
	v, ok := p[key]
	if !ok || v.Kind != KindIntList {
		return nil, false
	}
	return v.IntList, true
}
