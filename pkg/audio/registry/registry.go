package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

type RecorderPCMFactory interface {
	NewRecorderPCM() (types.RecorderPCM, error)
}

type PlayerPCMFactory interface {
	NewPlayerPCM() (types.PlayerPCM, error)
}

type factoryWithPriority[F any] struct {
	Priority int
	Type     reflect.Type
	Factory  F
}

type factoryRegistry[F any] struct {
	locker    sync.Mutex
	factories map[reflect.Type]factoryWithPriority[F]
}

func newFactoryRegistry[F any]() *factoryRegistry[F] {
	return &factoryRegistry[F]{
		factories: map[reflect.Type]factoryWithPriority[F]{},
	}
}

func factoryType(factory any) reflect.Type {
	t := reflect.ValueOf(factory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func (r *factoryRegistry[F]) register(priority int, factory F) {
	t := factoryType(factory)

	r.locker.Lock()
	defer r.locker.Unlock()
	if _, ok := r.factories[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of type %v", t))
	}
	r.factories[t] = factoryWithPriority[F]{
		Priority: priority,
		Type:     t,
		Factory:  factory,
	}
}

func (r *factoryRegistry[F]) unregister(factory F) bool {
	t := factoryType(factory)

	r.locker.Lock()
	defer r.locker.Unlock()
	_, ok := r.factories[t]
	delete(r.factories, t)
	return ok
}

// list returns the factories ordered by priority, highest first. Equal
// priorities are ordered by type name, so the result is deterministic.
func (r *factoryRegistry[F]) list() []F {
	r.locker.Lock()
	all := make([]factoryWithPriority[F], 0, len(r.factories))
	for _, factory := range r.factories {
		all = append(all, factory)
	}
	r.locker.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority > all[j].Priority
		}
		return all[i].Type.String() < all[j].Type.String()
	})

	result := make([]F, 0, len(all))
	for _, factory := range all {
		result = append(result, factory.Factory)
	}
	return result
}

var (
	recorderFactoryRegistry = newFactoryRegistry[RecorderPCMFactory]()
	playerFactoryRegistry   = newFactoryRegistry[PlayerPCMFactory]()
)

func RegisterRecorderFactory(
	priority int,
	recorderPCMFactory RecorderPCMFactory,
) {
	recorderFactoryRegistry.register(priority, recorderPCMFactory)
}

func UnregisterRecorderFactory(recorderPCMFactory RecorderPCMFactory) bool {
	return recorderFactoryRegistry.unregister(recorderPCMFactory)
}

func RecorderFactories() []RecorderPCMFactory {
	return recorderFactoryRegistry.list()
}

func RegisterPlayerFactory(
	priority int,
	playerPCMFactory PlayerPCMFactory,
) {
	playerFactoryRegistry.register(priority, playerPCMFactory)
}

func UnregisterPlayerFactory(playerPCMFactory PlayerPCMFactory) bool {
	return playerFactoryRegistry.unregister(playerPCMFactory)
}

func PlayerFactories() []PlayerPCMFactory {
	return playerFactoryRegistry.list()
}
