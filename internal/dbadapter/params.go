/*
Copyright 2026 The Tibia-QueryManager Authors.
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

package dbadapter

// Params is a small fixed-capacity positional-argument builder: a
// fixed-size array of slots a handler fills before calling Execute/Query.
// database/sql already takes a variadic []interface{}, so this wrapper
// exists mainly to give handler code an "append, then hand off" shape and
// to catch a handler writing more parameters than the query it's building
// actually has placeholders for.
type Params struct {
	values []interface{}
}

// NewParams preallocates room for capacity arguments. Pushing more than
// capacity arguments panics: a handler doing so has miscounted its own
// placeholders.
func NewParams(capacity int) *Params {
	return &Params{values: make([]interface{}, 0, capacity)}
}

func (p *Params) push(v interface{}) *Params {
	if len(p.values) == cap(p.values) {
		panic("dbadapter: Params capacity exceeded")
	}
	p.values = append(p.values, v)
	return p
}

func (p *Params) Int32(v int32) *Params      { return p.push(v) }
func (p *Params) Int64(v int64) *Params      { return p.push(v) }
func (p *Params) Bool(v bool) *Params        { return p.push(v) }
func (p *Params) Text(v string) *Params      { return p.push(v) }
func (p *Params) Bytea(v []byte) *Params     { return p.push(v) }
func (p *Params) Timestamp(v int64) *Params  { return p.push(v) }

func (p *Params) Args() []interface{} { return p.values }
