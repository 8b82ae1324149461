// Package types contains common types shared by the query layer and the shell.
package types

import "github.com/okian/sdvxrec/internal/domain/model"

// Entry is one row of a ranked listing. Rank is 1-based and positional:
// records with equal volforce still get consecutive ranks.
type Entry struct {
	Rank   int                   `json:"rank"`
	Record model.CanonicalRecord `json:"record"`
}
