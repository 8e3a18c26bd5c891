package robot

const (
	WeightClass3lb  = "3lb"
	WeightClass12lb = "12lb"
)

// Robot is a tracked entrant. Fights reference robots by internal id, so a
// robot must be registered before the pipeline can reconcile its fights.
type Robot struct {
	ID          int64
	Name        string
	BuilderID   int64
	WeightClass string
	Weapon      string
	Drive       string
	TopSpeed    *float64
	WeaponSpeed *float64
}
