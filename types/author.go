package types

// Author is a person credited on one or more books.
type Author struct {
	// ID is the unique identifier of the author.
	ID int `json:"id" db:"id"`

	// FirstName is the author's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the author's family name.
	LastName string `json:"last_name" db:"last_name"`

	// BirthDate is the author's date of birth.
	BirthDate Date `json:"birth_date" db:"birth_date"`
}

// String returns the display form "{first} {last}".
func (a Author) String() string {
	return a.FirstName + " " + a.LastName
}
