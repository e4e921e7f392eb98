package domain

import (
	"context"

	"github.com/cockroachdb/errors"
)

//go:generate mockgen --destination=storage.mock.go --package=domain . ObjectStore

// ObjectStore grava um objeto completo num bucket fixo.
//
// Com Overwrite=false a escrita falha se já existir objeto no path, em vez
// de substituí-lo. Uma escrita que falha não deixa objeto parcial.
type ObjectStore interface {
	Put(ctx context.Context, path string, data []byte, opts PutOptions) error
}

type PutOptions struct {
	ContentType string
	Overwrite   bool
}

// ErrObjectExists é retornado quando o path já está ocupado e Overwrite=false.
var ErrObjectExists = errors.New("object already exists")
