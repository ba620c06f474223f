// Package descriptor resolves the address and description metadata of
// hosted endpoints. Self references are built from what a Source returns.
package descriptor

import (
	"context"
	"errors"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/pkg/epr"
)

var (
	ErrNotFound    = errors.New("endpoint descriptor not found")
	ErrInvalidName = errors.New("invalid endpoint name")
	ErrNoDocStore  = errors.New("no document store configured")
)

// Record is everything known about one hosted endpoint.
type Record struct {
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	Descriptor epr.Descriptor `json:"descriptor"`
}

// Endpoint converts the record to the form the reference builder takes.
func (r *Record) Endpoint() epr.Endpoint {
	d := r.Descriptor
	return epr.Endpoint{Address: r.Address, Descriptor: &d}
}

// Source looks up endpoint records by name.
type Source interface {
	Lookup(ctx context.Context, name string) (*Record, error)
}

// Store is a Source that can also be written.
type Store interface {
	Source
	Upsert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Record, error)
}

func recordFromConfig(ep config.EndpointConfig) Record {
	return Record{
		Name:    ep.Name,
		Address: ep.Address,
		Descriptor: epr.Descriptor{
			InterfaceName: epr.QName{Namespace: ep.InterfaceName.Namespace, Local: ep.InterfaceName.Local},
			ServiceName:   epr.QName{Namespace: ep.ServiceName.Namespace, Local: ep.ServiceName.Local},
			EndpointName:  ep.EndpointName,
		},
	}
}
