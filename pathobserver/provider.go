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

package pathobserver

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/metadata"
	"dirpx.dev/bindx/metrics"
)

// ErrUnbound is returned by a Provider used before a member manager was bound.
var ErrUnbound = errors.New("bindx(pathobserver): no member manager bound")

// Provider builds Observers for path observer requests. It accepts
// apis.MemberPathObserverRequest values (or pointers to them), plain strings
// and apis.MemberPath values; the latter two use the config defaults.
//
// Request flags may be overridden per call through the metadata keys
// Observable, Optional and StablePath.
type Provider struct {
	defaults apis.MemberPathObserverRequest
	log      zerolog.Logger
	metrics  *metrics.Metrics

	mu sync.RWMutex
	mm apis.MemberManager
}

var (
	_ apis.MemberPathObserverProvider = (*Provider)(nil)
	_ apis.MemberManagerBinder        = (*Provider)(nil)
)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

func WithLogger(l zerolog.Logger) ProviderOption {
	return func(p *Provider) { p.log = l }
}

func WithMetrics(m *metrics.Metrics) ProviderOption {
	return func(p *Provider) { p.metrics = m }
}

// NewProvider returns a Provider using cfg for request defaults.
func NewProvider(cfg apis.Config, opts ...ProviderOption) *Provider {
	p := &Provider{
		defaults: apis.MemberPathObserverRequest{
			MemberFlags: cfg.MemberFlags,
			Observable:  cfg.Observable,
			Optional:    cfg.Optional,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) BindMemberManager(mm apis.MemberManager) {
	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()
}

func (p *Provider) memberManager() apis.MemberManager {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mm
}

func (p *Provider) TryGetMemberPathObserver(om apis.ObservationManager, target any, request any, md apis.Metadata) (apis.MemberPathObserver, error) {
	var req apis.MemberPathObserverRequest
	switch r := request.(type) {
	case apis.MemberPathObserverRequest:
		req = r
	case *apis.MemberPathObserverRequest:
		if r == nil {
			return nil, nil
		}
		req = *r
	case string, apis.MemberPath:
		req = p.defaults
		req.Path = r
	default:
		return nil, nil
	}
	if v, ok := metadata.Observable.TryGet(md); ok {
		req.Observable = v
	}
	if v, ok := metadata.Optional.TryGet(md); ok {
		req.Optional = v
	}
	if v, ok := metadata.StablePath.TryGet(md); ok {
		req.HasStablePath = v
	}

	mp, ok := req.Path.(apis.MemberPath)
	if !ok {
		var err error
		if mp, err = om.GetMemberPath(req.Path, md); err != nil {
			return nil, err
		}
	}
	mm := p.memberManager()
	if mm == nil {
		return nil, ErrUnbound
	}
	o, err := New(mm, target, mp, Options{
		MemberFlags:   req.MemberFlags,
		Observable:    req.Observable,
		Optional:      req.Optional,
		HasStablePath: req.HasStablePath,
		Logger:        p.log,
		Metrics:       p.metrics,
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}
