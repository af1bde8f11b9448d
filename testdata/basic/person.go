package basic

// Person has optional fields only.
//
//buildit:builder
type Person struct {
	// Name is the display name.
	name    Option[string]
	age     Option[uint32]
	address string         `buildit:"skip"`
	renamed Option[string] `buildit:"rename='NewName'"`
}

// Uses a method that only exists once generated.
var _ = Person{}.WithName("Alice").WithAge(30)
