package rbtree

import "github.com/pkg/errors"

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrEmptyTree    = errors.New("tree is empty")
	ErrDuplicateKey = errors.New("duplicate key")
)
