package types

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidOrder = errors.New("invalid traversal order")

// Order is the visiting order of a tree traversal
type Order int

const (
	InOrder Order = iota
	PreOrder
	PostOrder
	LevelOrder
)

func Orders() []Order {
	return []Order{InOrder, PreOrder, PostOrder, LevelOrder}
}

func (o Order) String() string {
	switch o {
	case InOrder:
		return "inorder"
	case PreOrder:
		return "preorder"
	case PostOrder:
		return "postorder"
	case LevelOrder:
		return "levelorder"
	}

	return "unknown"
}

// ParseOrder accepts "inorder", "in-order", "in_order" and "in" (and the same
// spellings for the other orders), case-insensitively.
func ParseOrder(s string) (Order, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)

	switch name {
	case "inorder", "in", "":
		return InOrder, nil
	case "preorder", "pre":
		return PreOrder, nil
	case "postorder", "post":
		return PostOrder, nil
	case "levelorder", "level", "bfs":
		return LevelOrder, nil
	}

	return InOrder, errors.Wrapf(ErrInvalidOrder, "%q", s)
}

func (o *Order) UnmarshalText(text []byte) error {
	order, err := ParseOrder(string(text))
	if err != nil {
		return err
	}

	*o = order
	return nil
}

func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
