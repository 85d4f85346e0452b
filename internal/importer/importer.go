// Package importer loads card statement exports as credit purchases.
package importer

import (
	"io"

	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
)

// Parser turns a statement export into entries.
type Parser interface {
	Parse(r io.Reader) ([]statement.Entry, error)
}
