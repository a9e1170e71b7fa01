package boltstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/rolodexdb/rolodex/pkg/core"
)

// Stored document forms. Children are embedded in the parent document, so
// the owner identity is implicit in the parent key and is not written;
// decodePerson re-derives it. Optional fields are dropped when empty to
// keep documents compact.
type personDoc struct {
	ID        int64        `json:"id"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Phone     string       `json:"phone,omitempty"`
	Addresses []addressDoc `json:"addresses,omitempty"`
	Emails    []emailDoc   `json:"emails,omitempty"`
}

type addressDoc struct {
	ID         int64  `json:"id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Primary    bool   `json:"primary,omitempty"`
	Kind       string `json:"kind"`
}

type emailDoc struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Primary bool   `json:"primary,omitempty"`
	Kind    string `json:"kind"`
}

func encodePerson(p *core.Person) ([]byte, error) {
	doc := personDoc{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}
	for _, a := range p.Addresses {
		doc.Addresses = append(doc.Addresses, addressDoc{
			ID:         a.ID,
			Street:     a.Street,
			City:       a.City,
			Region:     a.Region,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Primary:    a.Primary,
			Kind:       string(defaultAddressKind(a.Kind)),
		})
	}
	for _, e := range p.Emails {
		doc.Emails = append(doc.Emails, emailDoc{
			ID:      e.ID,
			Email:   e.Email,
			Primary: e.Primary,
			Kind:    string(defaultEmailKind(e.Kind)),
		})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode person %d: %w", p.ID, err)
	}
	return data, nil
}

func decodePerson(data []byte) (*core.Person, error) {
	var doc personDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	p := &core.Person{
		ID:        doc.ID,
		FirstName: doc.FirstName,
		LastName:  doc.LastName,
		Phone:     doc.Phone,
		Addresses: make([]core.Address, 0, len(doc.Addresses)),
		Emails:    make([]core.EmailAddress, 0, len(doc.Emails)),
	}
	for _, a := range doc.Addresses {
		p.Addresses = append(p.Addresses, core.Address{
			ID:         a.ID,
			PersonID:   doc.ID,
			Street:     a.Street,
			City:       a.City,
			Region:     a.Region,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Primary:    a.Primary,
			Kind:       core.AddressKind(a.Kind),
		})
	}
	for _, e := range doc.Emails {
		p.Emails = append(p.Emails, core.EmailAddress{
			ID:       e.ID,
			PersonID: doc.ID,
			Email:    e.Email,
			Primary:  e.Primary,
			Kind:     core.EmailKind(e.Kind),
		})
	}
	return p, nil
}

func defaultAddressKind(k core.AddressKind) core.AddressKind {
	if k == "" {
		return core.AddressHome
	}
	return k
}

func defaultEmailKind(k core.EmailKind) core.EmailKind {
	if k == "" {
		return core.EmailPersonal
	}
	return k
}

// itob renders an identity as an 8-byte big-endian key so bucket order
// matches numeric order.
func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
