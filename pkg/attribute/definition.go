package attribute

// Definition is the serializable form of a prototype, as found in
// configuration files.
type Definition struct {
	ID      int     `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`

	// Syncable defaults to true when omitted.
	Syncable *bool `json:"syncable,omitempty" yaml:"syncable,omitempty"`
}

// IsSyncable resolves the optional Syncable flag.
func (d Definition) IsSyncable() bool {
	return d.Syncable == nil || *d.Syncable
}
