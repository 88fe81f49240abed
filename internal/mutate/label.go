package mutate

import (
	"errors"
	"strings"

	"formbuilder/internal/model"
)

var ErrEmptyLabel = errors.New("label must not be empty")

// SetLabel renames a block. Surrounding whitespace is trimmed; empty labels are rejected.
func SetLabel(forest []model.Node, id, label string) (Result, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Result{Tree: model.CloneForest(forest)}, ErrEmptyLabel
	}
	if _, ok := Find(forest, strings.TrimSpace(id)); !ok {
		return Result{Tree: model.CloneForest(forest)}, NotFoundError{Kind: "block", ID: id}
	}
	return Update(forest, id, func(n *model.Node) {
		n.Label = label
	}), nil
}
