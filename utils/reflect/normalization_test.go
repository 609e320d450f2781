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

package reflect_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	uref "dirpx.dev/bindx/utils/reflect"
)

// Local test types.
type A struct{}
type Level int
type Stringer interface{ String() string }

func TestNormalize_Pointers(t *testing.T) {
	type PP = **A
	cases := []struct {
		name string
		typ  reflect.Type
		want reflect.Type
	}{
		{"plain", reflect.TypeOf(A{}), reflect.TypeOf(A{})},
		{"ptr", reflect.TypeOf(&A{}), reflect.TypeOf(A{})},
		{"ptrptr", reflect.TypeOf((*PP)(nil)).Elem(), reflect.TypeOf(A{})},
		{"slice kept", reflect.TypeOf([]A{}), reflect.TypeOf([]A{})},
		{"map kept", reflect.TypeOf(map[string]A{}), reflect.TypeOf(map[string]A{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uref.Normalize(tc.typ)
			if err != nil {
				t.Fatalf("Normalize(%v) returned error: %v", tc.typ, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}

	if _, err := uref.Normalize(nil); !errors.Is(err, uref.ErrReflectNilType) {
		t.Fatalf("nil type: want ErrReflectNilType, got %v", err)
	}
}

func TestConvert(t *testing.T) {
	var s Stringer
	cases := []struct {
		name string
		in   any
		typ  reflect.Type
		want any
	}{
		{"nil to zero", nil, reflect.TypeOf(0), 0},
		{"same", 3, reflect.TypeOf(0), 3},
		{"widen", int8(3), reflect.TypeOf(int64(0)), int64(3)},
		{"int to float", 2, reflect.TypeOf(0.0), 2.0},
		{"named", 2, reflect.TypeOf(Level(0)), Level(2)},
		{"parse int", "42", reflect.TypeOf(0), 42},
		{"parse float", "1.5", reflect.TypeOf(float32(0)), float32(1.5)},
		{"parse bool", "true", reflect.TypeOf(false), true},
		{"bytes to string", []byte("ab"), reflect.TypeOf(""), "ab"},
		{"to interface", 1, reflect.TypeOf((*any)(nil)).Elem(), 1},
		{"nil interface", nil, reflect.TypeOf(&s).Elem(), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uref.Convert(tc.in, tc.typ)
			if err != nil {
				t.Fatalf("Convert(%v, %v): unexpected error: %v", tc.in, tc.typ, err)
			}
			if got.Type() != tc.typ {
				t.Fatalf("Convert(%v, %v): got type %v", tc.in, tc.typ, got.Type())
			}
			if !reflect.DeepEqual(got.Interface(), tc.want) {
				t.Fatalf("Convert(%v, %v) = %v, want %v", tc.in, tc.typ, got.Interface(), tc.want)
			}
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   any
		typ  reflect.Type
	}{
		{"int to string", 65, reflect.TypeOf("")},
		{"bad number", "x", reflect.TypeOf(0)},
		{"overflow", "300", reflect.TypeOf(int8(0))},
		{"struct", A{}, reflect.TypeOf(0)},
		{"string to struct", "a", reflect.TypeOf(A{})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uref.Convert(tc.in, tc.typ); !errors.Is(err, uref.ErrReflectNotConvertible) {
				t.Fatalf("Convert(%v, %v): want ErrReflectNotConvertible, got %v", tc.in, tc.typ, err)
			}
		})
	}
	if _, err := uref.Convert(1, nil); !errors.Is(err, uref.ErrReflectNilType) {
		t.Fatalf("nil type: want ErrReflectNilType, got %v", err)
	}
}

func TestParseIndex(t *testing.T) {
	cases := []struct {
		text string
		typ  reflect.Type
		want any
	}{
		{"0", reflect.TypeOf(0), 0},
		{" 7 ", reflect.TypeOf(uint(0)), uint(7)},
		{`"key"`, reflect.TypeOf(""), "key"},
		{`'key'`, reflect.TypeOf(""), "key"},
		{"plain", reflect.TypeOf(""), "plain"},
		{"1", reflect.TypeOf(Level(0)), Level(1)},
	}
	for _, tc := range cases {
		got, err := uref.ParseIndex(tc.text, tc.typ)
		if err != nil {
			t.Fatalf("ParseIndex(%q, %v): %v", tc.text, tc.typ, err)
		}
		if got.Interface() != tc.want {
			t.Fatalf("ParseIndex(%q, %v) = %v, want %v", tc.text, tc.typ, got.Interface(), tc.want)
		}
	}
}

func TestIndirectAndIsNil(t *testing.T) {
	a := &A{}
	v, ok := uref.Indirect(reflect.ValueOf(&a))
	if !ok || v.Type() != reflect.TypeOf(A{}) {
		t.Fatalf("Indirect(**A) = (%v,%v), want (A,true)", v, ok)
	}
	if _, ok := uref.Indirect(reflect.ValueOf((*A)(nil))); ok {
		t.Fatalf("Indirect(nil ptr): want false")
	}
	if !uref.IsNil(nil) || !uref.IsNil((*A)(nil)) || !uref.IsNil(map[string]int(nil)) {
		t.Fatalf("IsNil: typed nils not detected")
	}
	if uref.IsNil(0) || uref.IsNil(a) {
		t.Fatalf("IsNil: non-nil reported as nil")
	}
}

// This test stresses Convert concurrently; Convert should be pure.
func TestConvert_Concurrent(t *testing.T) {
	workers := runtime.GOMAXPROCS(0) * 4
	iters := 2000

	var wg sync.WaitGroup
	wg.Add(workers)

	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				v, err := uref.Convert("12", reflect.TypeOf(0))
				if err != nil {
					errCh <- err
					return
				}
				if v.Int() != 12 {
					errCh <- errors.New("wrong conversion result")
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for e := range errCh {
		t.Fatal(e)
	}
}

func BenchmarkConvert_Parse(b *testing.B) {
	typ := reflect.TypeOf(0)
	for i := 0; i < b.N; i++ {
		_, _ = uref.Convert("42", typ)
	}
}
