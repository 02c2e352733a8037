// Package seed ships the built-in demo horse profiles. The demo must be
// votable without any database configured, so these profiles have no durable
// identity; they are addressed by the deterministic hash of their name (see
// the identity package).
package seed

import (
	"github.com/hoofmatch/hoofmatch/identity"
)

// Horse is one entry of the code-shipped demo dataset
type Horse struct {
	Name     string
	Breed    string
	Tagline  string
	ImageURL string
}

var horses = []Horse{
	{Name: "Star", Breed: "Arabian", Tagline: "Long gallops on the beach, no time wasters", ImageURL: "/img/seed/star.jpg"},
	{Name: "Thunderhoof", Breed: "Friesian", Tagline: "Tall, dark mane, excellent dressage", ImageURL: "/img/seed/thunderhoof.jpg"},
	{Name: "Buttercup", Breed: "Shetland Pony", Tagline: "Small but mighty. Loves apples", ImageURL: "/img/seed/buttercup.jpg"},
	{Name: "Midnight", Breed: "Mustang", Tagline: "Free spirit looking for a stable relationship", ImageURL: "/img/seed/midnight.jpg"},
	{Name: "Clover", Breed: "Irish Cob", Tagline: "Lucky in love, luckier in hay", ImageURL: "/img/seed/clover.jpg"},
	{Name: "Biscuit", Breed: "Palomino", Tagline: "Golden coat, golden heart", ImageURL: "/img/seed/biscuit.jpg"},
	{Name: "Duchess", Breed: "Lipizzaner", Tagline: "Classically trained, holds high standards", ImageURL: "/img/seed/duchess.jpg"},
	{Name: "Pepper", Breed: "Appaloosa", Tagline: "Spots in all the right places", ImageURL: "/img/seed/pepper.jpg"},
}

// Horses returns a copy of the demo dataset
func Horses() []Horse {
	out := make([]Horse, len(horses))
	copy(out, horses)
	return out
}

// Catalog resolves seed profile metadata by normalized key without I/O.
// Construct once at startup and inject where needed.
type Catalog struct {
	byKey map[string]Horse
}

// NewCatalog builds the key-to-horse index from the shipped dataset
func NewCatalog() *Catalog {
	byKey := make(map[string]Horse, len(horses))
	for _, h := range horses {
		norm, err := identity.Normalize(identity.SeedName(h.Name))
		if err != nil {
			// Shipped names are non-empty; a failure here is a programming error.
			panic(err)
		}
		byKey[norm.Key] = h
	}
	return &Catalog{byKey: byKey}
}

// ByKey looks up a seed horse by its normalized key ("seed:<hash>")
func (c *Catalog) ByKey(key string) (Horse, bool) {
	h, ok := c.byKey[key]
	return h, ok
}

// Len returns the number of seed profiles
func (c *Catalog) Len() int {
	return len(c.byKey)
}
