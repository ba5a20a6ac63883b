package gamedata

// Attribute is one entry of minecraft-data's attributes.json.
type Attribute struct {
	Name     string  `json:"name"`
	Resource string  `json:"resource"`
	Default  float64 `json:"default"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
