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

package path

import (
	"sync"

	"github.com/rs/zerolog"

	"dirpx.dev/bindx/apis"
)

// Provider is an apis.MemberPathProvider for string paths and ready-made
// apis.MemberPath values. Parsed strings are cached.
type Provider struct {
	cache sync.Map // key: string, val: apis.MemberPath
	log   zerolog.Logger
}

var _ apis.MemberPathProvider = (*Provider)(nil)

// NewProvider returns a caching path provider logging parse failures to log.
func NewProvider(log zerolog.Logger) *Provider {
	return &Provider{log: log}
}

// TryGetMemberPath returns nil for unsupported requests and for strings that
// do not parse.
func (p *Provider) TryGetMemberPath(path any, _ apis.Metadata) apis.MemberPath {
	switch v := path.(type) {
	case apis.MemberPath:
		return v
	case string:
		if mp, ok := p.cache.Load(v); ok {
			return mp.(apis.MemberPath)
		}
		mp, err := Parse(v)
		if err != nil {
			p.log.Debug().Err(err).Str("path", v).Msg("member path rejected")
			return nil
		}
		actual, _ := p.cache.LoadOrStore(v, mp)
		return actual.(apis.MemberPath)
	case []string:
		return FromMembers(v)
	}
	return nil
}

// Len reports the number of cached paths.
func (p *Provider) Len() int {
	n := 0
	p.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
