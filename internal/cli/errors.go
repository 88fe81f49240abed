package cli

import (
	"encoding/json"
	"fmt"

	"formbuilder/internal/format"
	"formbuilder/internal/mutate"
)

func errNotFound(kind, id string) error {
	return mutate.NotFoundError{Kind: kind, ID: id}
}

// envelope wraps every command result as {"data": ...}.
type envelope struct {
	Data any `json:"data"`
}

func (e envelope) Text() string {
	if t, ok := e.Data.(format.Texter); ok {
		return t.Text()
	}
	b, err := json.MarshalIndent(e.Data, "", "  ")
	if err != nil {
		return fmt.Sprint(e.Data)
	}
	return string(b)
}
