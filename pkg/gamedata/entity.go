package gamedata

// Entity is the static description of an entity type.
type Entity struct {
	ID          int
	Name        string
	DisplayName string
	Type        string
	Width       float64
	Height      float64
	Category    string
}
