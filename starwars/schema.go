// Package starwars is a small example schema served by the gqllambda command.
package starwars

import (
	gqlgo "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"

	"github.com/jkrebs-tr/graphqlLambda/engine"
)

const Schema = `
schema {
	query: Query
}

enum Episode {
	NEWHOPE
	EMPIRE
	JEDI
}

type Query {
	hero(episode: Episode): Character!
	character(id: ID!): Character
	characters(kind: Kind): [Character!]!
}

enum Kind {
	HUMAN
	DROID
}

type Character {
	id: ID!
	name: String!
	kind: Kind!
	appearsIn: [Episode!]!
	friends: [Character!]!
	homePlanet: String
	primaryFunction: String
}
`

// NewSchema parses the schema over the built-in data. Resolver panics are logged to logger.
func NewSchema(logger *logrus.Logger) (*gqlgo.Schema, error) {
	return gqlgo.ParseSchema(Schema, &Resolver{data: newData()},
		gqlgo.Logger(engine.PanicLogger{Logger: logger}),
		gqlgo.MaxDepth(10),
	)
}
