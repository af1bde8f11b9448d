package invalid

//buildit:builder
type Config struct {
	name Option[string]
	port int
	host Option[string] `buildit:"rename=Host"`
}

//buildit:builder
type Mode int
