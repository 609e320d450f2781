/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package observers implements member observation: handlers subscribing to
// the change notifications of a member, and the Manager that dispatches
// observer, path and path observer requests to prioritized components.
package observers

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/components"
)

// Manager is the apis.ObservationManager façade. Each request kind is served
// by the first component of its collection returning a result.
type Manager struct {
	observers     *components.Collection[apis.MemberObserverProvider]
	paths         *components.Collection[apis.MemberPathProvider]
	pathObservers *components.Collection[apis.MemberPathObserverProvider]

	mu  sync.RWMutex
	mm  apis.MemberManager
	log zerolog.Logger
}

var (
	_ apis.ObservationManager  = (*Manager)(nil)
	_ apis.MemberManagerBinder = (*Manager)(nil)
	_ apis.Invalidator         = (*Manager)(nil)
)

// NewManager returns a Manager without components.
func NewManager(log zerolog.Logger) *Manager {
	m := &Manager{log: log}
	m.observers = components.New[apis.MemberObserverProvider](nil)
	m.paths = components.New[apis.MemberPathProvider](nil)
	m.pathObservers = components.New[apis.MemberPathObserverProvider](nil)
	return m
}

// AddObserverProvider registers a member observer provider.
func (m *Manager) AddObserverProvider(p apis.MemberObserverProvider, priority int) apis.Token {
	m.bind(p)
	return m.observers.Add(p, priority)
}

// AddPathProvider registers a member path provider.
func (m *Manager) AddPathProvider(p apis.MemberPathProvider, priority int) apis.Token {
	m.bind(p)
	return m.paths.Add(p, priority)
}

// AddPathObserverProvider registers a path observer provider.
func (m *Manager) AddPathObserverProvider(p apis.MemberPathObserverProvider, priority int) apis.Token {
	m.bind(p)
	return m.pathObservers.Add(p, priority)
}

// BindMemberManager records mm and hands it to every component implementing
// apis.MemberManagerBinder, including ones added later.
func (m *Manager) BindMemberManager(mm apis.MemberManager) {
	m.mu.Lock()
	m.mm = mm
	m.mu.Unlock()

	each := func(c any) {
		if b, ok := c.(apis.MemberManagerBinder); ok {
			b.BindMemberManager(mm)
		}
	}
	m.observers.Each(func(c apis.MemberObserverProvider) bool { each(c); return true })
	m.paths.Each(func(c apis.MemberPathProvider) bool { each(c); return true })
	m.pathObservers.Each(func(c apis.MemberPathObserverProvider) bool { each(c); return true })
}

// MemberManager returns the bound member manager, or nil.
func (m *Manager) MemberManager() apis.MemberManager {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mm
}

func (m *Manager) bind(c any) {
	b, ok := c.(apis.MemberManagerBinder)
	if !ok {
		return
	}
	if mm := m.MemberManager(); mm != nil {
		b.BindMemberManager(mm)
	}
}

// GetMemberObserver returns the first non-empty observer. An empty observer is
// returned, not an error, when no component applies.
func (m *Manager) GetMemberObserver(t reflect.Type, member any, md apis.Metadata) apis.MemberObserver {
	var out apis.MemberObserver
	m.observers.Each(func(p apis.MemberObserverProvider) bool {
		out = p.TryGetMemberObserver(t, member, md)
		return out.IsEmpty()
	})
	return out
}

// GetMemberPath converts path into an apis.MemberPath.
func (m *Manager) GetMemberPath(path any, md apis.Metadata) (apis.MemberPath, error) {
	var out apis.MemberPath
	m.paths.Each(func(p apis.MemberPathProvider) bool {
		out = p.TryGetMemberPath(path, md)
		return out == nil
	})
	if out == nil {
		m.log.Debug().Interface("path", path).Msg("no member path provider accepted the request")
		return nil, &apis.NotSupportedError{Component: "MemberPathProvider", Request: path}
	}
	return out, nil
}

// GetMemberPathObserver builds a path observer for request on target. The
// first provider returning an observer or an error decides the outcome.
func (m *Manager) GetMemberPathObserver(target any, request any, md apis.Metadata) (apis.MemberPathObserver, error) {
	var (
		out apis.MemberPathObserver
		err error
	)
	m.pathObservers.Each(func(p apis.MemberPathObserverProvider) bool {
		out, err = p.TryGetMemberPathObserver(m, target, request, md)
		return out == nil && err == nil
	})
	if err != nil {
		m.log.Debug().Err(err).Interface("request", request).Msg("path observer request failed")
		return nil, err
	}
	if out == nil {
		return nil, &apis.NotSupportedError{Component: "MemberPathObserverProvider", Request: request}
	}
	return out, nil
}

// Invalidate forwards to components implementing apis.Invalidator.
func (m *Manager) Invalidate(t reflect.Type, md apis.Metadata) {
	m.observers.Each(func(p apis.MemberObserverProvider) bool {
		if inv, ok := p.(apis.Invalidator); ok {
			inv.Invalidate(t, md)
		}
		return true
	})
}
