package club

// Club is one entry in the club directory, mapping the external feed's team
// reference onto the club identity used by auctions and rosters.
type Club struct {
	ID     string
	Name   string
	Short  string
	ExtRef string
}
