package mysql

import (
	"strings"

	"github.com/joacominatel/dbnav/internal/database"
)

// constraintsFromTypes parses a comma separated list of
// information_schema.table_constraints.constraint_type values.
func constraintsFromTypes(types string) []database.Constraint {
	var out []database.Constraint
	for _, t := range strings.Split(types, ",") {
		switch strings.ToUpper(strings.TrimSpace(t)) {
		case "PRIMARY KEY":
			out = append(out, database.ConstraintPrimaryKey)
		case "FOREIGN KEY":
			out = append(out, database.ConstraintForeignKey)
		case "UNIQUE":
			out = append(out, database.ConstraintUnique)
		case "CHECK":
			out = append(out, database.ConstraintCheck)
		}
	}
	return database.NormalizeConstraints(out)
}
