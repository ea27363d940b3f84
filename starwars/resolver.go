package starwars

import (
	gqlgo "github.com/graph-gophers/graphql-go"
)

type character struct {
	ID              string
	Name            string
	Kind            string
	AppearsIn       []string
	Friends         []string
	HomePlanet      *string
	PrimaryFunction *string
}

type data struct {
	characters map[string]*character
	order      []string
	heroes     map[string]string
}

func strPtr(s string) *string {
	return &s
}

func newData() *data {
	all := []*character{
		{ID: "1000", Name: "Luke Skywalker", Kind: "HUMAN", AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Friends: []string{"1002", "1003", "2000", "2001"}, HomePlanet: strPtr("Tatooine")},
		{ID: "1001", Name: "Darth Vader", Kind: "HUMAN", AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Friends: []string{"1004"}, HomePlanet: strPtr("Tatooine")},
		{ID: "1002", Name: "Han Solo", Kind: "HUMAN", AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Friends: []string{"1000", "1003", "2001"}},
		{ID: "1003", Name: "Leia Organa", Kind: "HUMAN", AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Friends: []string{"1000", "1002", "2000", "2001"}, HomePlanet: strPtr("Alderaan")},
		{ID: "1004", Name: "Wilhuff Tarkin", Kind: "HUMAN", AppearsIn: []string{"NEWHOPE"}, Friends: []string{"1001"}},
		{ID: "2000", Name: "C-3PO", Kind: "DROID", AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Friends: []string{"1000", "1002", "1003", "2001"}, PrimaryFunction: strPtr("Protocol")},
		{ID: "2001", Name: "R2-D2", Kind: "DROID", AppearsIn: []string{"NEWHOPE", "EMPIRE", "JEDI"}, Friends: []string{"1000", "1002", "1003"}, PrimaryFunction: strPtr("Astromech")},
	}

	d := &data{
		characters: make(map[string]*character, len(all)),
		heroes:     map[string]string{"EMPIRE": "1000"},
	}
	for _, c := range all {
		d.characters[c.ID] = c
		d.order = append(d.order, c.ID)
	}
	return d
}

// Resolver is the root query resolver.
type Resolver struct {
	data *data
}

func (r *Resolver) Hero(args struct{ Episode *string }) *characterResolver {
	id := "2001"
	if args.Episode != nil {
		if hero, ok := r.data.heroes[*args.Episode]; ok {
			id = hero
		}
	}
	return &characterResolver{c: r.data.characters[id], data: r.data}
}

func (r *Resolver) Character(args struct{ ID gqlgo.ID }) *characterResolver {
	c, ok := r.data.characters[string(args.ID)]
	if !ok {
		return nil
	}
	return &characterResolver{c: c, data: r.data}
}

func (r *Resolver) Characters(args struct{ Kind *string }) []*characterResolver {
	out := []*characterResolver{}
	for _, id := range r.data.order {
		c := r.data.characters[id]
		if args.Kind != nil && c.Kind != *args.Kind {
			continue
		}
		out = append(out, &characterResolver{c: c, data: r.data})
	}
	return out
}

type characterResolver struct {
	c    *character
	data *data
}

func (r *characterResolver) ID() gqlgo.ID {
	return gqlgo.ID(r.c.ID)
}

func (r *characterResolver) Name() string {
	return r.c.Name
}

func (r *characterResolver) Kind() string {
	return r.c.Kind
}

func (r *characterResolver) AppearsIn() []string {
	return r.c.AppearsIn
}

func (r *characterResolver) Friends() []*characterResolver {
	out := make([]*characterResolver, 0, len(r.c.Friends))
	for _, id := range r.c.Friends {
		out = append(out, &characterResolver{c: r.data.characters[id], data: r.data})
	}
	return out
}

func (r *characterResolver) HomePlanet() *string {
	return r.c.HomePlanet
}

func (r *characterResolver) PrimaryFunction() *string {
	return r.c.PrimaryFunction
}
