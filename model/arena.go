package model

import (
	"iter"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Arena holds every Interface known to an analysis, addressed by InterfaceID.
// Parents refer to each other by id rather than by pointer, so diamonds and
// shared ancestors need no ownership.
//
// Arena is safe for concurrent reads once populated.
type Arena struct {
	mu      sync.RWMutex
	byID    map[InterfaceID]*Interface
	order   []InterfaceID
	fresher *fresher
}

func NewArena() *Arena {
	return &Arena{
		byID:    make(map[InterfaceID]*Interface),
		fresher: &fresher{},
	}
}

// fresher hands out GenericIDs
type fresher struct {
	freshCount atomic.Uint64
}

func (f *fresher) next() GenericID {
	return GenericID(f.freshCount.Add(1))
}

// FreshGeneric returns a GenericParam with an identity unique to this Arena
func (a *Arena) FreshGeneric(name string, kind GenericKind) GenericParam {
	return GenericParam{ID: a.fresher.next(), Name: name, Kind: kind}
}

// Add registers iface. Adding two interfaces with the same id is an error.
func (a *Arena) Add(iface *Interface) error {
	if iface == nil {
		return errors.New("cannot add nil interface")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byID[iface.ID]; ok {
		return errors.Wrapf(ErrDuplicateInterface, "interface %s", iface.ID)
	}
	a.byID[iface.ID] = iface
	a.order = append(a.order, iface.ID)
	return nil
}

func (a *Arena) Get(id InterfaceID) (*Interface, error) {
	a.mu.RLock()
	iface, ok := a.byID[id]
	a.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInterface, "interface %s", id)
	}
	return iface, nil
}

func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

// All iterates over interfaces in the order they were added
func (a *Arena) All() iter.Seq[*Interface] {
	a.mu.RLock()
	ids := make([]InterfaceID, len(a.order))
	copy(ids, a.order)
	a.mu.RUnlock()
	return func(yield func(*Interface) bool) {
		for _, id := range ids {
			iface, err := a.Get(id)
			if err != nil {
				continue
			}
			if !yield(iface) {
				return
			}
		}
	}
}
