// Package datagen produces deterministic sample people for seeding
// databases and driving benchmarks. The same count and seed always
// yield the same batch, so runs are comparable across backends.
package datagen

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/rolodexdb/rolodex/pkg/core"
)

var firstNames = []string{
	"Ada", "Alan", "Grace", "Edsger", "Barbara", "Donald", "Margaret",
	"Dennis", "Radia", "Ken", "Frances", "John", "Kathleen", "Tony",
	"Adele", "Niklaus",
}

var lastNames = []string{
	"Lovelace", "Turing", "Hopper", "Dijkstra", "Liskov", "Knuth",
	"Hamilton", "Ritchie", "Perlman", "Thompson", "Allen", "Backus",
	"Booth", "Hoare", "Goldberg", "Wirth",
}

var streets = []string{
	"Analytical Way", "Enigma Road", "Harvard Mark Lane", "Structured Street",
	"Abstraction Avenue", "Literate Loop", "Apollo Drive", "Unix Terrace",
	"Spanning Tree Court", "Belle Lane", "Compiler Close", "Fortran Place",
}

type city struct {
	name    string
	region  string
	country string
}

var cities = []city{
	{"London", "", "GB"},
	{"Cambridge", "MA", "US"},
	{"Arlington", "VA", "US"},
	{"Eindhoven", "NB", "NL"},
	{"Zurich", "ZH", "CH"},
	{"Pittsburgh", "PA", "US"},
	{"Austin", "TX", "US"},
	{"Manchester", "", "GB"},
}

var emailDomains = []string{
	"example.org", "example.com", "example.net", "mail.example",
}

var addressKinds = []core.AddressKind{core.AddressHome, core.AddressWork, core.AddressOther}

var emailKinds = []core.EmailKind{core.EmailPersonal, core.EmailWork, core.EmailOther}

// People generates n people from seed with identities unset. Each person
// carries zero to three addresses and zero to three email addresses; the
// first child in each collection is marked primary.
func People(n int, seed int64) []*core.Person {
	rng := rand.New(rand.NewSource(seed))
	people := make([]*core.Person, 0, n)
	for i := 0; i < n; i++ {
		people = append(people, person(rng, i))
	}
	return people
}

func person(rng *rand.Rand, ordinal int) *core.Person {
	p := &core.Person{
		FirstName: firstNames[rng.Intn(len(firstNames))],
		LastName:  lastNames[rng.Intn(len(lastNames))],
	}
	if rng.Intn(5) > 0 {
		p.Phone = fmt.Sprintf("+1 %03d-%03d-%04d", 200+rng.Intn(800), rng.Intn(1000), rng.Intn(10000))
	}
	for a := rng.Intn(4); a > 0; a-- {
		p.Addresses = append(p.Addresses, address(rng, len(p.Addresses) == 0))
	}
	for e := rng.Intn(4); e > 0; e-- {
		p.Emails = append(p.Emails, email(rng, p, ordinal, len(p.Emails) == 0))
	}
	return p
}

func address(rng *rand.Rand, primary bool) core.Address {
	c := cities[rng.Intn(len(cities))]
	return core.Address{
		Street:     fmt.Sprintf("%d %s", 1+rng.Intn(999), streets[rng.Intn(len(streets))]),
		City:       c.name,
		Region:     c.region,
		PostalCode: fmt.Sprintf("%05d", rng.Intn(100000)),
		Country:    c.country,
		Primary:    primary,
		Kind:       addressKinds[rng.Intn(len(addressKinds))],
	}
}

func email(rng *rand.Rand, p *core.Person, ordinal int, primary bool) core.EmailAddress {
	local := strings.ToLower(fmt.Sprintf("%s.%s.%d", p.FirstName, p.LastName, ordinal))
	return core.EmailAddress{
		Email:   fmt.Sprintf("%s@%s", local, emailDomains[rng.Intn(len(emailDomains))]),
		Primary: primary,
		Kind:    emailKinds[rng.Intn(len(emailKinds))],
	}
}
