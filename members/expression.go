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

package members

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"dirpx.dev/bindx/apis"
	"dirpx.dev/bindx/token"
	uref "dirpx.dev/bindx/utils/reflect"
)

// ThisVar is the expression variable bound to the target.
const ThisVar = "this"

// ExpressionConfig describes a read-only computed member.
type ExpressionConfig struct {
	// Name is the member name.
	Name string
	// Source is the expr-lang program, for example `this.First + " " + this.Last`.
	Source string
	// ResultType converts the result; nil keeps the evaluated value.
	ResultType reflect.Type
	// DependsOn lists members of the target whose changes change the result.
	DependsOn []string
	// Vars are extra variables visible to the program.
	Vars map[string]any
	// Options are passed to expr.Compile.
	Options []expr.Option
}

// Expression is a read-only attached accessor computed by an expr-lang program.
type Expression struct {
	base
	source    string
	program   *vm.Program
	vars      map[string]any
	dependsOn []string
}

// Ensure Expression implements apis.AccessorMemberInfo.
var _ apis.AccessorMemberInfo = (*Expression)(nil)

// NewExpression compiles cfg for targets of declaring. om selects the observers of dependencies.
func NewExpression(declaring reflect.Type, cfg ExpressionConfig, om apis.ObservationManager) (*Expression, error) {
	program, err := expr.Compile(cfg.Source, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("bindx(members): compile expression %q: %w", cfg.Name, err)
	}
	typ := cfg.ResultType
	if typ == nil {
		typ = anyType
	}
	return &Expression{
		base: base{
			name:       cfg.Name,
			declaring:  declaring,
			typ:        typ,
			underlying: program,
			memberType: apis.Accessor,
			flags:      apis.InstancePublic | apis.Attached,
			om:         om,
		},
		source:    cfg.Source,
		program:   program,
		vars:      maps.Clone(cfg.Vars),
		dependsOn: append([]string(nil), cfg.DependsOn...),
	}, nil
}

// Source returns the program text.
func (e *Expression) Source() string { return e.source }

func (e *Expression) CanRead() bool  { return true }
func (e *Expression) CanWrite() bool { return false }

// GetValue evaluates the program with target bound to ThisVar.
func (e *Expression) GetValue(target any, _ apis.Metadata) (any, error) {
	if uref.IsNil(target) {
		return nil, ErrNilTarget
	}
	env := make(map[string]any, len(e.vars)+1)
	maps.Copy(env, e.vars)
	env[ThisVar] = target
	out, err := expr.Run(e.program, env)
	if err != nil {
		return nil, fmt.Errorf("bindx(members): evaluate expression %q: %w", e.name, err)
	}
	if e.typ == anyType {
		return out, nil
	}
	cv, err := uref.Convert(out, e.typ)
	if err != nil {
		return nil, err
	}
	return cv.Interface(), nil
}

// SetValue always fails: expressions are read-only.
func (e *Expression) SetValue(any, any, apis.Metadata) error {
	return apis.NewMemberAccessError(e, apis.MustBeWritable)
}

// TryObserve subscribes listener to every dependency of the expression.
func (e *Expression) TryObserve(target any, listener apis.EventListener, md apis.Metadata) apis.Token {
	if e.om == nil || listener == nil || len(e.dependsOn) == 0 {
		return apis.EmptyToken
	}
	tokens := make([]apis.Token, 0, len(e.dependsOn))
	for _, dep := range e.dependsOn {
		tokens = append(tokens, e.om.GetMemberObserver(e.declaring, dep, md).TryObserve(target, listener, md))
	}
	return token.Join(tokens...)
}
