// Package contracts validates the shape of oracle replies against an embedded JSON schema.
package contracts

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed oracle_reply.schema.json
var oracleReplySchema []byte

const oracleReplyURL = "oracle_reply.schema.json"

var (
	categorySchema *jsonschema.Schema
	prosConsSchema *jsonschema.Schema
)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if err := compiler.AddResource(oracleReplyURL, bytes.NewReader(oracleReplySchema)); err != nil {
		panic(fmt.Sprintf("failed to add schema resource %s: %v", oracleReplyURL, err))
	}

	categorySchema = compiler.MustCompile(oracleReplyURL + "#/definitions/categoryScores")
	prosConsSchema = compiler.MustCompile(oracleReplyURL + "#/definitions/prosCons")
}

// ValidateCategory checks one decoded "<category>Scores" value: a map of
// key to number, or a sequence of single-entry maps
func ValidateCategory(v interface{}) error {
	return categorySchema.Validate(v)
}

// ValidateProsCons checks the decoded "prosCons" value
func ValidateProsCons(v interface{}) error {
	return prosConsSchema.Validate(v)
}
