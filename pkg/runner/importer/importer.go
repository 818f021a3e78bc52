// Package importer seeds the local mirror from a JSON export.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/storefront/pkg/backend"
	"tableflip.dev/storefront/pkg/record"
	"tableflip.dev/storefront/pkg/store"
)

type Import struct {
	Kind        record.Kind
	Path        string
	Persistence store.Persistence
	Out         io.Writer
}

func (i *Import) Do(ctx context.Context) error {
	if i.Persistence == nil {
		return errors.New("can not import, no persistence")
	}
	data, err := os.ReadFile(i.Path)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	raws, err := Parse(data)
	if err != nil {
		return fmt.Errorf("import %s: %w", i.Path, err)
	}
	if err := validate(i.Kind, raws); err != nil {
		return err
	}
	if err := i.Persistence.Replace(ctx, i.Kind, raws); err != nil {
		return err
	}
	out := i.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "imported %d %s\n", len(raws), i.Kind)
	return nil
}

// Parse accepts a JSON array of records or a `{"records": [...]}` document.
func Parse(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	var raws []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	}
	var doc struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Records == nil {
		return nil, errors.New(`expected an array or a "records" field`)
	}
	return doc.Records, nil
}

func validate(kind record.Kind, raws []json.RawMessage) error {
	var err error
	switch kind {
	case record.KindCustomers:
		_, err = backend.Decode[record.Customer](kind, raws)
	case record.KindOrders:
		_, err = backend.Decode[record.Order](kind, raws)
	case record.KindProducts:
		_, err = backend.Decode[record.Product](kind, raws)
	case record.KindOrderItems:
		_, err = backend.Decode[record.OrderItem](kind, raws)
	default:
		err = fmt.Errorf("import: unknown kind %q", kind)
	}
	return err
}
