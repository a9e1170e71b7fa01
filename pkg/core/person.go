package core

// AddressKind categorizes a postal address.
type AddressKind string

// Address kinds. Stored as plain text in both backends.
const (
	AddressHome  AddressKind = "home"
	AddressWork  AddressKind = "work"
	AddressOther AddressKind = "other"
)

// EmailKind categorizes an email address.
type EmailKind string

// Email kinds.
const (
	EmailPersonal EmailKind = "personal"
	EmailWork     EmailKind = "work"
	EmailOther    EmailKind = "other"
)

// Person is the aggregate root: one parent record plus its two owned child
// collections. A Person constructed in memory carries ID == 0; the engine
// assigns the identity on first write and it is immutable afterwards.
type Person struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Phone     string         `json:"phone,omitempty"`
	Addresses []Address      `json:"addresses"`
	Emails    []EmailAddress `json:"emails"`
}

// Address is an owned child of Person. PersonID is the foreign key: the
// normalized backend persists it, the document backend derives it from the
// enclosing record on read.
type Address struct {
	ID         int64       `json:"id"`
	PersonID   int64       `json:"personId,omitempty"`
	Street     string      `json:"street"`
	City       string      `json:"city"`
	Region     string      `json:"region,omitempty"`
	PostalCode string      `json:"postalCode,omitempty"`
	Country    string      `json:"country,omitempty"`
	Primary    bool        `json:"primary,omitempty"`
	Kind       AddressKind `json:"kind"`
}

// EmailAddress is an owned child of Person.
type EmailAddress struct {
	ID       int64     `json:"id"`
	PersonID int64     `json:"personId,omitempty"`
	Email    string    `json:"email"`
	Primary  bool      `json:"primary,omitempty"`
	Kind     EmailKind `json:"kind"`
}

// ChildCount returns the number of owned child entities across both
// collections. Used by the unified delete-count convention.
func (p *Person) ChildCount() int64 {
	return int64(len(p.Addresses) + len(p.Emails))
}
